package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/paulvha/wheel-of-fortune/internal/status"
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
	"onoff": func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Wheel of Fortune</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.lit { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Wheel of Fortune</h1>

<h2>Game</h2>
<table>
<tr><th>State</th><td id="state">{{.State}}</td></tr>
<tr><th>Light</th><td id="light">{{if ge .Light 0}}{{.Light}}{{else}}none yet{{end}}</td></tr>
<tr><th>Combo presses</th><td>{{.Combos}}</td></tr>
<tr><th>Rounds</th><td>{{.Rounds}}</td></tr>
</table>

<h2>Lights</h2>
<table>
<tr><th>Light</th><td>This round / Wins</td></tr>
{{range $i, $n := .Usage}}<tr><th{{if eq $i $.Light}} class="lit"{{end}}>{{$i}}</th><td>{{$n}} / {{index $.Wins $i}}</td></tr>
{{end}}</table>

{{with .LastRound}}<h2>Last Round</h2>
<table>
<tr><th>Winner</th><td id="winner">{{.Winner}}</td></tr>
<tr><th>Spins</th><td>{{.Spins}}</td></tr>
<tr><th>Speed-ups</th><td>{{.SpeedUps}}</td></tr>
<tr><th>Glow</th><td>{{.Glow}} ticks</td></tr>
<tr><th>Ended</th><td>{{.EndedAt.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>ID</th><td>{{.ID}}</td></tr>
</table>
{{end}}
<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Selection</th><td>{{if .Config.Sequential}}sequential{{else}}random{{end}}</td></tr>
<tr><th>Glow</th><td>{{.Config.GlowTicks}} ticks</td></tr>
<tr><th>Invert</th><td>{{onoff .Config.Invert}}</td></tr>
<tr><th>Combo shutdown</th><td>{{onoff .Config.Shutdown}}</td></tr>
<tr><th>Sound</th><td>{{onoff .Config.Sound}}</td></tr>
<tr><th>Button LEDs</th><td>{{onoff .Config.Indicators}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
