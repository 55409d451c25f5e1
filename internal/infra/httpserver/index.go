package httpserver

// indexHTML is the single-page tool: upload a CSV, preview it, pick the text
// column and row budget, analyze, download the markdown report.
const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AI Insight Synthesizer</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%; font-size: 0.85rem; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.card { border: 1px solid #ccc; border-radius: 6px; padding: 1rem; margin: 1rem 0; }
.error { color: #b00; }
button { padding: 6px 14px; }
</style>
</head>
<body>
<h1>AI Customer Insight Synthesizer</h1>
<p>Upload customer feedback (CSV). Get themes, severity, frequency, and recommended actions with citations.</p>

<input type="file" id="file" accept=".csv">
<div id="controls" style="display:none">
  <p>
    <label>Feedback column: <select id="column"></select></label>
    <label>Rows to analyze (5&ndash;50): <input type="number" id="maxRows" min="5" max="50" value="15"></label>
    <button id="analyze">Analyze with AI</button>
    <button id="download">Download Markdown Report</button>
  </p>
  <h2>Preview</h2>
  <div id="preview"></div>
</div>
<div id="status"></div>
<div id="themes"></div>

<script>
const fileInput = document.getElementById('file');
const status = document.getElementById('status');

function formData() {
  const fd = new FormData();
  fd.append('file', fileInput.files[0]);
  fd.append('column', document.getElementById('column').value);
  fd.append('max_rows', document.getElementById('maxRows').value);
  return fd;
}

fileInput.addEventListener('change', async () => {
  if (!fileInput.files.length) return;
  const fd = new FormData();
  fd.append('file', fileInput.files[0]);
  const res = await fetch('/v1/preview', { method: 'POST', body: fd });
  if (!res.ok) { status.innerHTML = '<p class="error">' + await res.text() + '</p>'; return; }
  const data = await res.json();
  const sel = document.getElementById('column');
  sel.innerHTML = data.headers.map(h => '<option>' + h + '</option>').join('');
  let html = '<table><tr>' + data.headers.map(h => '<th>' + h + '</th>').join('') + '</tr>';
  for (const row of data.rows) {
    html += '<tr>' + row.map(c => '<td>' + c + '</td>').join('') + '</tr>';
  }
  document.getElementById('preview').innerHTML = html + '</table>';
  document.getElementById('controls').style.display = '';
  status.innerHTML = '';
});

document.getElementById('analyze').addEventListener('click', async () => {
  status.textContent = 'Analyzing...';
  document.getElementById('themes').innerHTML = '';
  const res = await fetch('/v1/analyze', { method: 'POST', body: formData() });
  if (!res.ok) { status.innerHTML = '<p class="error">' + await res.text() + '</p>'; return; }
  const data = await res.json();
  status.textContent = 'Done';
  document.getElementById('themes').innerHTML = data.themes.map(t =>
    '<div class="card"><h3>' + t.theme + ' (Freq: ' + t.frequency + ', Sev: ' + t.severity + ')</h3>' +
    '<p>' + t.summary + '</p>' +
    '<p><b>Recommended action:</b> ' + t.recommended_action + '</p>' +
    '<p><b>Citations:</b></p><table><tr><th>row_id</th><th>text</th></tr>' +
    t.citations.map(c => '<tr><td>' + c.row_id + '</td><td>' + c.text + '</td></tr>').join('') +
    '</table></div>').join('');
});

document.getElementById('download').addEventListener('click', async () => {
  status.textContent = 'Analyzing...';
  const res = await fetch('/v1/analyze?format=markdown', { method: 'POST', body: formData() });
  if (!res.ok) { status.innerHTML = '<p class="error">' + await res.text() + '</p>'; return; }
  const blob = await res.blob();
  const a = document.createElement('a');
  a.href = URL.createObjectURL(blob);
  a.download = 'insights_report.md';
  a.click();
  status.textContent = 'Done';
});
</script>
</body>
</html>`
