// Command stater checks, inspects and runs bots declared in a routes manifest.
package main

func main() {
	Execute()
}
