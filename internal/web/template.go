package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/stocktank/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateClass": func(s string) string {
		switch s {
		case "IDLE":
			return "idle"
		case "FILLING":
			return "filling"
		case "POST_FILL":
			return "settling"
		case "FAULT":
			return "fault"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="30">
<title>Stock Tank</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.idle { color: green; }
.filling { color: #0066cc; font-weight: bold; }
.settling { color: #888; }
.fault { color: red; font-weight: bold; }
.unknown { color: orange; }
.open { color: #0066cc; font-weight: bold; }
.closed { color: #888; }
.full { color: green; }
.low { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Stock Tank</h1>

<h2>Tank</h2>
<table>
<tr><th>State</th><td class="{{stateClass .State}}">{{.State}}</td></tr>
<tr><th>Valve</th><td class="{{if eq .Valve "OPEN"}}open{{else if eq .Valve "CLOSED"}}closed{{else}}unknown{{end}}">{{.Valve}}</td></tr>
<tr><th>Level</th><td class="{{if eq .Tank "FULL"}}full{{else if eq .Tank "LOW"}}low{{else}}unknown{{end}}">{{.Tank}}</td></tr>
<tr><th>Ticks</th><td>{{.Ticks}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Valve opened</th><td>{{.Counts.Opened}}</td></tr>
<tr><th>Valve closed</th><td>{{.Counts.Closed}}</td></tr>
<tr><th>Faults</th><td>{{.Counts.Faults}}</td></tr>
<tr><th>Faults cleared</th><td>{{.Counts.Recovered}}</td></tr>
<tr><th>Settled</th><td>{{.Counts.Settled}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Check interval</th><td>{{.Config.CheckInterval}} ticks</td></tr>
<tr><th>Drive pulse</th><td>{{.Config.DriveMs}}ms</td></tr>
<tr><th>Decay</th><td>{{.Config.DecayMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}
	// Snapshot has Uptime() and position methods but the template wants fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		State  string
		Valve  string
		Tank   string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		State:    state,
		Valve:    snap.ValvePosition(),
		Tank:     snap.TankLevel(),
	}
	indexTmpl.Execute(w, data)
}
