// Command walkfilter reduces a captured snmpwalk text dump to only the
// lines under an OID some registered plugin actually queries. A filtered
// walk should be safe to publish even if the original contains
// confidential data, though that doesn't remove the need for common sense.
// Grounded on nssct/walkfilter.py.
package main

import (
	"bufio"
	"fmt"
	"os"

	_ "github.com/nssct/snmpcheck/plugins/brocade"
	_ "github.com/nssct/snmpcheck/plugins/cisco"
	_ "github.com/nssct/snmpcheck/plugins/detect"
	_ "github.com/nssct/snmpcheck/plugins/hp"

	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/plugins"
	"github.com/nssct/snmpcheck/walktext"
)

// keepLine reports whether line's OID lies under any registered plugin OID.
func keepLine(line string, includeOIDs []oid.OID) (bool, error) {
	b, err := walktext.ParseLine(line)
	if err != nil {
		return false, err
	}
	for _, base := range includeOIDs {
		if b.OID.HasPrefix(base) {
			return true, nil
		}
	}
	return false, nil
}

func main() {
	in := os.Stdin
	if flag := os.Args[1:]; len(flag) > 0 {
		f, err := os.Open(flag[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	includeOIDs := plugins.AllOIDs()
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		keep, err := keepLine(line, includeOIDs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "walkfilter: %v\n", err)
			os.Exit(1)
		}
		if keep {
			fmt.Fprintln(out, line)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "walkfilter: %v\n", err)
		os.Exit(1)
	}
}
