package main

import (
	"voice-type/cmd/voicetype/cmd"

	// Import providers to register them
	_ "voice-type/internal/app/api/elevenlabs"
	_ "voice-type/internal/app/api/openai/whisper"
	_ "voice-type/internal/app/api/whisper_cpp"
	_ "voice-type/internal/app/api/whisper_server"
)

// @title voice-type API
// @version 1.0
// @description Speech to text over HTTP. Upload an audio file, get the transcript back.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cmd.Execute()
}
