package view

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// ScriptPath is where the live session script is served.
const ScriptPath = "/static/contact-form.js"

// Page wraps the contact form in a full HTML document.
func Page(p Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(p.title())
		h.raw(`</title></head><body><main class="App">`)
		h.render(ContactForm(p))
		h.raw(`</main>`)
		if p.LiveURL != "" {
			h.raw(`<script src="` + ScriptPath + `" defer></script>`)
		}
		h.raw(`</body></html>`)

		return h.err
	})
}

// Script drives a live session: every input event is sent as a change frame,
// the submit button sends a submit frame, and state frames rewrite the error
// slots and the results area.
const Script = `(function () {
  var formEl = document.querySelector("form[data-live]");
  if (!formEl || !window.WebSocket) { return; }
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + formEl.getAttribute("data-live"));

  function send(frame) {
    if (ws.readyState === WebSocket.OPEN) { ws.send(JSON.stringify(frame)); }
  }

  formEl.addEventListener("input", function (ev) {
    if (!ev.target.name) { return; }
    send({type: "change", field: ev.target.name, value: ev.target.value});
  });

  formEl.addEventListener("submit", function (ev) {
    if (ws.readyState !== WebSocket.OPEN) { return; }
    ev.preventDefault();
    send({type: "submit"});
  });

  ws.addEventListener("message", function (ev) {
    var frame = JSON.parse(ev.data);
    if (frame.type !== "state" && frame.type !== "submitted") { return; }
    ["firstName", "lastName", "email", "message"].forEach(function (name) {
      var slot = document.getElementById(name + "-error");
      if (!slot) { return; }
      slot.textContent = "";
      var msg = frame.errors && frame.errors[name];
      if (msg) {
        var p = document.createElement("p");
        p.setAttribute("data-testid", "error");
        p.textContent = msg;
        slot.appendChild(p);
      }
    });
    if (typeof frame.results === "string") {
      document.getElementById("results").innerHTML = frame.results;
    }
  });
})();
`

// RenderString renders a component into a string.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
