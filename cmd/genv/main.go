// Genv is the command line front end of the genv parser.
//
// Usage:
//
//	# Parse a file and print its canonical form
//	genv parse -f source main.gv
//
//	# Parse several entry files concurrently
//	genv check a.gv b.gv
//
//	# Re-parse on every change and expose metrics
//	genv watch main.gv --metrics-addr :9090
//
//	# Interactive expression parser
//	genv repl
package main

func main() {
	Execute()
}
