package animate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("animate").Parse(htmlTemplate))
}

// templateData holds data for the HTML template.
type templateData struct {
	Title      string
	ScriptTag  template.HTML
	FigureJSON template.JS
	FrameMS    int
}

// GenerateHTML renders snapshots as a self-contained plotly animation
// page with a play button and a time slider.
func GenerateHTML(snaps []Snapshot, stages []Stage, opts Options) (string, error) {
	if len(snaps) == 0 {
		return "", fmt.Errorf("no snapshots to animate")
	}

	fig := buildFigure(snaps, stages, opts)
	figJSON, err := json.Marshal(fig)
	if err != nil {
		return "", fmt.Errorf("encoding figure: %w", err)
	}

	data := templateData{
		Title:      "Caller Flow Animation",
		ScriptTag:  template.HTML(`<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>`),
		FigureJSON: template.JS(figJSON),
		FrameMS:    opts.FrameDurationMS,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// figure mirrors the plotly figure shape: data, layout and frames.
type figure struct {
	Data   []trace        `json:"data"`
	Layout map[string]any `json:"layout"`
	Frames []frame        `json:"frames"`
}

type trace struct {
	X        []float64      `json:"x"`
	Y        []float64      `json:"y"`
	Mode     string         `json:"mode"`
	Text     []string       `json:"text,omitempty"`
	TextFont map[string]any `json:"textfont,omitempty"`
	Marker   map[string]any `json:"marker,omitempty"`
	Name     string         `json:"name"`
	Hover    string         `json:"hoverinfo"`
}

type frame struct {
	Name string  `json:"name"`
	Data []trace `json:"data"`
}

func buildFigure(snaps []Snapshot, stages []Stage, opts Options) figure {
	resources := resourceTrace(stages, opts)

	frames := make([]frame, len(snaps))
	for i, snap := range snaps {
		frames[i] = frame{
			Name: snap.Label,
			Data: []trace{resources, callerTrace(snap, opts)},
		}
	}

	sliderSteps := make([]map[string]any, len(frames))
	for i, f := range frames {
		sliderSteps[i] = map[string]any{
			"label":  f.Name,
			"method": "animate",
			"args": []any{
				[]string{f.Name},
				map[string]any{
					"mode":       "immediate",
					"frame":      map[string]any{"duration": 0, "redraw": false},
					"transition": map[string]any{"duration": 0},
				},
			},
		}
	}

	layout := map[string]any{
		"width":  opts.Width,
		"height": opts.Height,
		"xaxis": map[string]any{
			"range":          []float64{0, opts.XMax},
			"visible":        false,
			"showgrid":       false,
			"zeroline":       false,
			"fixedrange":     true,
			"showticklabels": false,
		},
		"yaxis": map[string]any{
			"range":          []float64{0, opts.YMax},
			"visible":        false,
			"showgrid":       false,
			"zeroline":       false,
			"fixedrange":     true,
			"showticklabels": false,
		},
		"showlegend":    false,
		"plot_bgcolor":  "white",
		"paper_bgcolor": "white",
		"updatemenus": []map[string]any{{
			"type":       "buttons",
			"showactive": false,
			"x":          0.05,
			"y":          0,
			"xanchor":    "right",
			"yanchor":    "top",
			"buttons": []map[string]any{
				{
					"label":  "Play",
					"method": "animate",
					"args": []any{nil, map[string]any{
						"mode":        "immediate",
						"fromcurrent": true,
						"frame":       map[string]any{"duration": opts.FrameDurationMS, "redraw": false},
						"transition":  map[string]any{"duration": 0},
					}},
				},
				{
					"label":  "Pause",
					"method": "animate",
					"args": []any{[]any{nil}, map[string]any{
						"mode":       "immediate",
						"frame":      map[string]any{"duration": 0, "redraw": false},
						"transition": map[string]any{"duration": 0},
					}},
				},
			},
		}},
		"sliders": []map[string]any{{
			"active": 0,
			"pad":    map[string]any{"t": 40},
			"steps":  sliderSteps,
		}},
	}

	if opts.DisplayStageLabels {
		var annotations []map[string]any
		for _, st := range stages {
			annotations = append(annotations, map[string]any{
				"x":         st.X + 10,
				"y":         st.Y,
				"text":      st.Label,
				"showarrow": false,
				"xanchor":   "left",
				"font":      map[string]any{"size": 12, "color": "#555"},
			})
		}
		layout["annotations"] = annotations
	}

	return figure{
		Data:   frames[0].Data,
		Layout: layout,
		Frames: frames,
	}
}

// resourceTrace draws the fixed blue dots marking resource slots.
func resourceTrace(stages []Stage, opts Options) trace {
	slots := ResourceSlots(stages, opts)
	tr := trace{
		Mode:   "markers",
		Name:   "resources",
		Hover:  "skip",
		Marker: map[string]any{"color": "LightBlue", "size": 11},
		X:      []float64{},
		Y:      []float64{},
	}
	for _, s := range slots {
		tr.X = append(tr.X, s.X)
		tr.Y = append(tr.Y, s.Y)
	}
	return tr
}

// callerTrace draws callers as text icons at their snapshot positions.
func callerTrace(snap Snapshot, opts Options) trace {
	tr := trace{
		Mode:     "text",
		Name:     "callers",
		Hover:    "skip",
		TextFont: map[string]any{"size": opts.IconSize},
		X:        []float64{},
		Y:        []float64{},
		Text:     []string{},
	}
	for _, m := range snap.Markers {
		tr.X = append(tr.X, m.X)
		tr.Y = append(tr.Y, m.Y)
		tr.Text = append(tr.Text, m.Text)
	}
	return tr
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  {{.ScriptTag}}
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 16px;
      background: #f5f5f5;
    }
    #anim {
      background: white;
      border: 1px solid #ddd;
      border-radius: 4px;
    }
  </style>
</head>
<body>
  <div id="anim"></div>
  <script>
    (function() {
      const fig = {{.FigureJSON}};
      Plotly.newPlot('anim', fig.data, fig.layout).then(function() {
        Plotly.addFrames('anim', fig.frames);
      });
    })();
  </script>
</body>
</html>`
