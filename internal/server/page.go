package server

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Dynamics 365 SDK Chat</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
input[type=text] { width: 70%; padding: .4rem; }
pre { white-space: pre-wrap; background: #f6f8fa; padding: 1rem; border-radius: 4px; }
.sources { color: #555; font-size: .9rem; }
</style>
</head>
<body>
<h1>Dynamics 365 SDK Chat</h1>
<form method="post" action="/">
<input type="text" name="question" value="{{.Question}}" placeholder="Ask a question about the SDK" autofocus>
<button type="submit">Get Answer</button>
</form>
{{if .Answer}}
<h2>Answer</h2>
<pre>{{.Answer}}</pre>
{{if .Sources}}
<div class="sources">
<h3>Sources</h3>
<ol>
{{range .Sources}}<li>{{.Document.Path}} ({{printf "%.4f" .Distance}})</li>
{{end}}</ol>
</div>
{{end}}
{{end}}
</body>
</html>
`
