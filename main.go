// Command rewind inspects and rewinds agent session state.
package main

import "rewind/cmd"

func main() {
	cmd.Execute()
}
