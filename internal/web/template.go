package web

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/amanpro/barn-node/internal/core"
	"github.com/amanpro/barn-node/internal/status"
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
	"reading": func(v float64, unit string) string {
		if math.IsNaN(v) {
			return "—"
		}
		return fmt.Sprintf("%.1f %s", v, unit)
	},
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Barn Node {{.Config.DeviceID}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.ok { color: green; }
.err { color: red; }
</style>
</head>
<body>
<h1>Barn Node {{.Config.DeviceID}}</h1>

<h2>Readings</h2>
<table>
<tr><th>Temperature</th><td>{{reading .Readings.Temperature "°C"}}</td></tr>
<tr><th>Humidity</th><td>{{reading .Readings.Humidity "%"}}</td></tr>
<tr><th>Ammonia</th><td>{{reading .Readings.Ammonia "ppm"}}</td></tr>
<tr><th>Tank</th><td>{{reading .Readings.TankVolume "L"}}</td></tr>
</table>

<h2>Actuators</h2>
<table>
<tr><th>Pump</th><td class="{{if .PumpOn}}on{{else}}off{{end}}">{{onOff .PumpOn}}</td></tr>
<tr><th>Siren</th><td class="{{if .SirenOn}}on{{else}}off{{end}}">{{onOff .SirenOn}}</td></tr>
<tr><th>Camera</th><td class="{{if .CameraOn}}on{{else}}off{{end}}">{{onOff .CameraOn}}</td></tr>
<tr><th>Aux</th><td class="{{if .AuxOn}}on{{else}}off{{end}}">{{onOff .AuxOn}}</td></tr>
</table>

<h2>Schedule</h2>
<table>
<tr><th>Clock synced</th><td>{{if .Synced}}yes{{else}}no{{end}}</td></tr>
<tr><th>Samples this hour</th><td>{{.FilledSlots}} / 6</td></tr>
<tr><th>Auto-flush</th><td>{{if eq .FlushInterval 0}}disabled{{else}}every {{.FlushInterval}}m{{end}}</td></tr>
{{if .LastReport}}<tr><th>Last report</th><td class="{{if .LastReport.Delivered}}ok{{else}}err{{end}}">{{.LastReport.Timestamp.Format "2006-01-02T15:04:05"}} ({{if .LastReport.Delivered}}delivered{{else}}failed{{end}})</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Sample period</th><td>{{.Config.SamplePeriodMin}}m</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has an Uptime() method and an actuator map; the template wants
	// plain fields.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		PumpOn   bool
		SirenOn  bool
		CameraOn bool
		AuxOn    bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		PumpOn:   snap.Actuators[core.ActuatorPump],
		SirenOn:  snap.Actuators[core.ActuatorSiren],
		CameraOn: snap.Actuators[core.ActuatorCamera],
		AuxOn:    snap.Actuators[core.ActuatorAux],
	}
	indexTmpl.Execute(w, data)
}
