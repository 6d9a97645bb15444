package api

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

type pageData struct {
	Width          int
	Height         int
	LabelFontSize  int
	TooltipFadeIn  int
	TooltipFadeOut int
}

var pageTemplate = template.Must(template.New("page").Parse(tmplPage))

// GetPage serves the chart page. It does not wait for the data; the page
// polls /api/years until the table is loaded.
func (h *Handler) GetPage(c echo.Context) error {
	layout := h.opts.Chart.Layout
	data := pageData{
		Width:          layout.Width,
		Height:         layout.Height,
		LabelFontSize:  h.opts.LabelFontSize,
		TooltipFadeIn:  h.opts.TooltipFadeIn,
		TooltipFadeOut: h.opts.TooltipFadeOut,
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

const tmplPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Average Daily Salary by Borough</title>
<style>
body{font-family:sans-serif;margin:24px}
#piechart label{margin-right:6px}
#year-value{margin-left:8px;font-weight:600}
.tooltip{position:absolute;pointer-events:none;background:#fff;border:1px solid #999;border-radius:4px;padding:6px 8px;font-size:12px;opacity:0;transition-property:opacity}
#status{color:#b00;margin-top:8px}
</style>
</head>
<body>
<div id="piechart">
  <label for="year-slider">Select Year:  </label><input type="range" id="year-slider" step="1" disabled><span id="year-value"></span>
  <div id="status">Loading payroll data…</div>
</div>
<script>
(function () {
  const W = {{.Width}}, H = {{.Height}}, FONT = {{.LabelFontSize}};
  const FADE_IN = {{.TooltipFadeIn}}, FADE_OUT = {{.TooltipFadeOut}};
  const NS = "http://www.w3.org/2000/svg";
  const root = document.getElementById("piechart");
  const slider = document.getElementById("year-slider");
  const readout = document.getElementById("year-value");
  const status = document.getElementById("status");

  const svg = document.createElementNS(NS, "svg");
  svg.setAttribute("width", W);
  svg.setAttribute("height", H);
  const g = document.createElementNS(NS, "g");
  g.setAttribute("transform", "translate(" + W / 2 + "," + H / 2 + ")");
  svg.appendChild(g);
  root.appendChild(svg);

  const tooltip = document.createElement("div");
  tooltip.className = "tooltip";
  root.appendChild(tooltip);

  const paths = new Map();
  let labels = [];
  let generation = 0;
  let frame = null;

  function pathFor(region, color) {
    let p = paths.get(region);
    if (!p) {
      p = document.createElementNS(NS, "path");
      p.setAttribute("stroke", "#fff");
      g.insertBefore(p, g.firstChild);
      paths.set(region, p);
    }
    p.setAttribute("fill", color);
    return p;
  }

  function showTooltip(ev, s) {
    tooltip.style.transitionDuration = FADE_IN + "ms";
    tooltip.style.opacity = 0.9;
    tooltip.innerHTML = "";
    tooltip.appendChild(document.createTextNode("Borough: " + s.tooltip.region));
    tooltip.appendChild(document.createElement("br"));
    tooltip.appendChild(document.createTextNode("Average Daily Salary: " + s.tooltip.mean));
    tooltip.style.left = ev.pageX + "px";
    tooltip.style.top = (ev.pageY - 28) + "px";
  }

  function hideTooltip() {
    tooltip.style.transitionDuration = FADE_OUT + "ms";
    tooltip.style.opacity = 0;
  }

  function drawLabels(state) {
    labels.forEach(function (t) { t.remove(); });
    labels = state.slices.map(function (s) {
      const t = document.createElementNS(NS, "text");
      t.textContent = s.label;
      t.setAttribute("transform", "translate(" + s.centroid[0] + "," + s.centroid[1] + ")");
      t.setAttribute("text-anchor", "middle");
      t.setAttribute("font-size", FONT);
      t.setAttribute("pointer-events", "none");
      g.appendChild(t);
      return t;
    });
    state.slices.forEach(function (s) {
      const p = pathFor(s.region, s.color);
      p.onmouseover = function (ev) { showTooltip(ev, s); };
      p.onmousemove = function (ev) { showTooltip(ev, s); };
      p.onmouseout = hideTooltip;
    });
  }

  function drawState(state) {
    generation = state.generation;
    paths.forEach(function (p) { p.remove(); });
    paths.clear();
    state.slices.forEach(function (s) { pathFor(s.region, s.color).setAttribute("d", s.path); });
    drawLabels(state);
  }

  // prune drops every path whose region is not among slices.
  function prune(slices) {
    const keep = new Set(slices.map(function (s) { return s.region; }));
    paths.forEach(function (p, region) {
      if (!keep.has(region)) { p.remove(); paths.delete(region); }
    });
  }

  function animate(tr, state) {
    if (tr.generation <= generation) return;
    generation = tr.generation;
    if (frame !== null) { cancelAnimationFrame(frame); frame = null; }
    prune(tr.slices);
    const els = tr.slices.map(function (s) { return pathFor(s.region, s.color); });
    const start = performance.now();
    function step(now) {
      if (tr.generation !== generation) return;
      const t = tr.duration_ms > 0 ? Math.min(1, (now - start) / tr.duration_ms) : 1;
      tr.slices.forEach(function (s, i) {
        const k = Math.min(s.frames.length - 1, Math.floor(t * s.frames.length));
        els[i].setAttribute("d", s.frames[k]);
      });
      if (t < 1) {
        frame = requestAnimationFrame(step);
        return;
      }
      frame = null;
      prune(state.slices);
    }
    frame = requestAnimationFrame(step);
    drawLabels(state);
  }

  function getJSON(url, opts) {
    return fetch(url, opts).then(function (r) {
      return r.json().then(function (env) {
        if (!env.ok) { const e = new Error(env.error.message); e.status = r.status; throw e; }
        return env.data;
      });
    });
  }

  slider.addEventListener("input", function () {
    readout.textContent = slider.value;
    getJSON("/api/year", {
      method: "PUT",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({year: Number(slider.value)})
    }).then(function (res) { animate(res.transition, res.chart); })
      .catch(function (err) { status.textContent = err.message; });
  });

  function boot() {
    getJSON("/api/years").then(function (d) {
      slider.min = d.min;
      slider.max = d.max;
      slider.step = d.step;
      slider.value = d.selected;
      readout.textContent = d.selected;
      slider.disabled = false;
      status.textContent = "";
      return getJSON("/api/chart").then(drawState);
    }).catch(function (err) {
      status.textContent = err.message;
      if (err.status === 503 && err.message.indexOf("loading") >= 0) setTimeout(boot, 1000);
    });
  }
  boot();
})();
</script>
</body>
</html>
`
