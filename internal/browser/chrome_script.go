package browser

import (
	"encoding/json"
	"fmt"
)

// jsElement is the JSON shape produced by queryScript.
type jsElement struct {
	Tag     string            `json:"tag"`
	Text    string            `json:"text"`
	Attrs   map[string]string `json:"attrs"`
	Visible bool              `json:"visible"`
	X       float64           `json:"x"`
	Y       float64           `json:"y"`
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Checked bool              `json:"checked"`
	Label   string            `json:"label"`
}

func (j jsElement) element() Element {
	attrs := j.Attrs
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Element{
		Tag:     j.Tag,
		Text:    collapseSpace(j.Text),
		Attrs:   attrs,
		Visible: j.Visible,
		Box:     Rect{X: j.X, Y: j.Y, Width: j.Width, Height: j.Height},
		Checked: j.Checked,
		Label:   collapseSpace(j.Label),
	}
}

// maxQueryResults bounds the elements returned per query.
const maxQueryResults = 200

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// queryScript snapshots elements matching selector. Invalid selectors
// return an empty list.
func queryScript(selector string) string {
	return fmt.Sprintf(`(() => {
  let nodes;
  try { nodes = document.querySelectorAll(%s); } catch (e) { return []; }
  const isControl = (el) => ['INPUT', 'SELECT', 'TEXTAREA'].includes(el.tagName);
  return Array.from(nodes).slice(0, %d).map((el) => {
    const r = el.getBoundingClientRect();
    const st = window.getComputedStyle(el);
    const visible = r.width > 0 && r.height > 0 &&
      st.visibility !== 'hidden' && st.display !== 'none' && parseFloat(st.opacity || '1') > 0;
    const attrs = {};
    for (const a of el.attributes) { attrs[a.name.toLowerCase()] = a.value; }
    let label = '';
    if (isControl(el)) {
      if (el.labels && el.labels.length) { label = el.labels[0].innerText || ''; }
      if (!label && el.closest('label')) { label = el.closest('label').innerText || ''; }
      if (!label) { label = el.getAttribute('aria-label') || ''; }
      if (!label && el.parentElement) { label = el.parentElement.innerText || ''; }
    } else {
      label = el.getAttribute('aria-label') || el.getAttribute('title') || '';
    }
    return {
      tag: el.tagName.toLowerCase(),
      text: (el.innerText || el.textContent || '').slice(0, 4000),
      attrs: attrs,
      visible: visible,
      x: r.x, y: r.y, width: r.width, height: r.height,
      checked: !!el.checked || el.getAttribute('aria-checked') === 'true',
      label: label,
    };
  });
})()`, jsString(selector), maxQueryResults)
}

// clickScript clicks the first visible element matching selector and
// reports whether one was found.
func clickScript(selector string) string {
	return fmt.Sprintf(`(() => {
  let nodes;
  try { nodes = document.querySelectorAll(%s); } catch (e) { return false; }
  for (const el of nodes) {
    const r = el.getBoundingClientRect();
    if (r.width > 0 && r.height > 0) { el.click(); return true; }
  }
  return false;
})()`, jsString(selector))
}
