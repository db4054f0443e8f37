// Command fmrdsctl is a small line-oriented client for the control
// surface, mirroring src/kissutil.go's pflag-based TCP client shape.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	var (
		host    = pflag.StringP("host", "H", "localhost", "fmrdsd control surface host")
		port    = pflag.IntP("port", "p", 8073, "fmrdsd control surface port")
		timeout = pflag.Duration("timeout", 3*time.Second, "connection timeout")
	)
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: fmrdsctl [flags] 'GROUP:ITEM value'")
		os.Exit(2)
	}
	command := strings.Join(args, " ")

	addr := fmt.Sprintf("%s:%d", *host, *port)
	conn, err := net.DialTimeout("tcp", addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to %s failed: %v\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\n", command); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	conn.SetReadDeadline(time.Now().Add(*timeout))
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(reply)
	if strings.HasPrefix(reply, "ERR") {
		os.Exit(1)
	}
}
