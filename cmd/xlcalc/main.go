// xlcalc recalculates spreadsheet workbooks from the command line.
package main

import "os"

func main() {
	os.Exit(execute())
}
