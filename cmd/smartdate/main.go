// Command smartdate resolves free-form date and time input from the command
// line, previews predictions and replays field interaction scripts.
package main

func main() {
	Execute()
}
