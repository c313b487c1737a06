package main

import "github.com/killallgit/voicenote-api/cmd"

// @title           Voicenote API
// @version         1.0.0
// @description     Turns uploaded voice recordings into transcript notes
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/voicenote-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
