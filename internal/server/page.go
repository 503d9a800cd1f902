package server

const indexHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{.Title}} · Chronoline</title>
    <link rel="stylesheet" href="/static/app.css" />
  </head>
  <body>
    <header class="bar">
      <span class="title">{{.Title}}</span>
      <span class="controls">
        <button id="zoom-out" title="Zoom out">−</button>
        <button id="reset" title="Reset view">Reset</button>
        <button id="zoom-in" title="Zoom in">+</button>
      </span>
    </header>
    <main id="stage"></main>
    <aside id="details" hidden>
      <button id="close" title="Close">×</button>
      <div id="details-body"></div>
    </aside>
    <script src="/static/app.js"></script>
  </body>
</html>
`

const appJS = `(() => {
  const stage = document.getElementById('stage');
  const panel = document.getElementById('details');
  const body = document.getElementById('details-body');
  let id = null;
  let drawing = false, pending = false;
  let queue = Promise.resolve();

  const json = (method, path, data) => fetch(path, {
    method,
    headers: {'Content-Type': 'application/json'},
    body: data === undefined ? undefined : JSON.stringify(data),
  });

  const gone = (res) => res.status === 404 || res.status === 410;

  async function start() {
    const r = stage.getBoundingClientRect();
    const res = await json('POST', '/api/sessions', {
      width: Math.max(1, Math.round(r.width)),
      height: Math.max(1, Math.round(r.height)),
      dpr: Math.min(4, window.devicePixelRatio || 1),
    });
    id = (await res.json()).id;
    redraw();
  }

  async function redraw() {
    if (drawing) { pending = true; return; }
    drawing = true;
    try {
      const res = await fetch('/api/sessions/' + id + '/frame.svg');
      if (res.ok) stage.innerHTML = await res.text();
      else if (gone(res)) await start();
    } finally {
      drawing = false;
      if (pending) { pending = false; redraw(); }
    }
  }

  function showDetails(html) {
    body.innerHTML = html;
    panel.hidden = false;
  }

  // Inputs are sent strictly in order so drags replay as performed.
  function send(type, extra) {
    queue = queue.then(async () => {
      const res = await json('POST', '/api/sessions/' + id + '/input', Object.assign({type}, extra));
      if (gone(res)) return start();
      if (!res.ok) return;
      const out = await res.json();
      if (out.details) showDetails(out.details);
      if (out.redraw) redraw();
    }).catch(() => {});
  }

  function action(path) {
    queue = queue.then(async () => {
      const res = await json('POST', '/api/sessions/' + id + path);
      if (gone(res)) return start();
      redraw();
    }).catch(() => {});
  }

  function at(e) {
    const r = stage.getBoundingClientRect();
    return {x: e.clientX - r.left, y: e.clientY - r.top};
  }

  stage.addEventListener('mousedown', (e) => send('mousedown', at(e)));
  window.addEventListener('mousemove', (e) => { if (e.buttons) send('mousemove', at(e)); });
  window.addEventListener('mouseup', (e) => send('mouseup', at(e)));
  stage.addEventListener('mouseleave', (e) => send('mouseleave', at(e)));
  stage.addEventListener('click', (e) => send('click', at(e)));
  stage.addEventListener('wheel', (e) => {
    e.preventDefault();
    send('wheel', Object.assign(at(e), {delta_y: e.deltaY}));
  }, {passive: false});

  const touch = (type) => (e) => {
    const t = e.touches[0] || e.changedTouches[0];
    if (type !== 'touchend') e.preventDefault();
    send(type, Object.assign(at(t), {touches: e.touches.length}));
  };
  stage.addEventListener('touchstart', touch('touchstart'), {passive: false});
  stage.addEventListener('touchmove', touch('touchmove'), {passive: false});
  stage.addEventListener('touchend', touch('touchend'));

  let resizeTimer = null;
  window.addEventListener('resize', () => {
    clearTimeout(resizeTimer);
    resizeTimer = setTimeout(() => {
      const r = stage.getBoundingClientRect();
      send('resize', {
        width: Math.max(1, Math.round(r.width)),
        height: Math.max(1, Math.round(r.height)),
        dpr: Math.min(4, window.devicePixelRatio || 1),
      });
    }, 100);
  });

  document.getElementById('zoom-in').addEventListener('click', () => action('/zoom-in'));
  document.getElementById('zoom-out').addEventListener('click', () => action('/zoom-out'));
  document.getElementById('reset').addEventListener('click', () => action('/reset'));
  document.getElementById('close').addEventListener('click', () => { panel.hidden = true; });

  start();
})();
`

const appCSS = `
*{box-sizing:border-box}
html,body{height:100%;margin:0}
body{
  display:flex;
  flex-direction:column;
  font-family:ui-sans-serif, system-ui, -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
  background:#fff;
  color:#111;
}
.bar{
  display:flex;
  align-items:center;
  justify-content:space-between;
  padding:8px 14px;
  border-bottom:1px solid rgba(0,0,0,0.08);
}
.title{font-weight:600; font-size:14px}
.controls button{
  min-width:36px;
  padding:4px 10px;
  border:1px solid rgba(0,0,0,0.15);
  border-radius:6px;
  background:#fafafa;
  cursor:pointer;
}
#stage{
  flex:1;
  min-height:200px;
  overflow:hidden;
  cursor:grab;
  user-select:none;
  touch-action:none;
}
#stage:active{cursor:grabbing}
#stage svg{display:block; width:100%; height:100%}
#details{
  position:fixed;
  right:16px;
  bottom:16px;
  width:min(420px, calc(100% - 32px));
  max-height:60%;
  overflow:auto;
  padding:14px 16px;
  background:#fff;
  border:1px solid rgba(0,0,0,0.12);
  border-radius:10px;
  box-shadow:0 8px 24px rgba(0,0,0,0.12);
}
#details h3{margin:0 0 6px}
#details .meta{color:#666; font-size:12px}
#close{
  float:right;
  border:none;
  background:none;
  font-size:18px;
  cursor:pointer;
}
`
