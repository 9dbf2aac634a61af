package main

import "voice-type/cmd/voicetype-dictate/cmd"

func main() {
	cmd.Execute()
}
