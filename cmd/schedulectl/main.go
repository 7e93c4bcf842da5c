// schedulectl 终端日程客户端
//
//	schedulectl schedule  -server http://localhost:8080 -token <jwt> [-user id] [-date YYYY-MM-DD] [-filter all|upcoming|past]
//	schedulectl timetable -server http://localhost:8080 -token <jwt> [-today]
//	schedulectl timetable -ics ./timetable.ics [-today]
//	schedulectl token     -user id [-role member] [-config path]
//	schedulectl revoke    -token <jwt> [-config path]
//	schedulectl migrate   up|down [-steps 1] [-config path]
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
