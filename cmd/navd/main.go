// Command navd is a demo/integration-test harness for the
// navigation-mesh manager: it loads a worldspace config and an OBJ
// scene, wires a navigator.Navigator, drives it through a scripted
// player walk, and reports the paths it finds. It is not a shipped
// game client.
package main

import "github.com/argonaut-engine/navmesh/cmd/navd/cmd"

func main() {
	cmd.Execute()
}
