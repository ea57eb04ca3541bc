package templates

const layoutHTML = `{{define "layout"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · Edify</title>
<style>{{stylesheet}}</style>
</head>
<body>
<header><nav>
<a class="brand" href="/">Edify</a>
{{range navLinks}}<a href="{{.Href}}"{{if eq .Page $.Active}} class="active"{{end}}>{{.Label}}</a>
{{end}}</nav></header>
<main>
{{if .Flash}}<div class="flash">{{.Flash}}</div>{{end}}
{{if .Error}}<div class="flash error">{{.Error}}</div>{{end}}
{{template "content" .}}
</main>
<footer>Progress is saved on this device only.{{if .RequestID}} <span hidden>{{.RequestID}}</span>{{end}}</footer>
</body>
</html>{{end}}
{{define "progressBar"}}<div class="bar" role="progressbar" aria-valuenow="{{.}}" aria-valuemin="0" aria-valuemax="100"><span style="{{barStyle .}}"></span></div>{{end}}
{{define "roadmapCard"}}<div class="card {{colorClass .Roadmap.Color}}">
<h3>{{.Roadmap.Icon}} <a href="/roadmaps/{{.Roadmap.ID}}">{{.Roadmap.Title}}</a></h3>
<p>{{.Roadmap.Description}}</p>
<p><small>{{.Roadmap.Duration}} · {{.Summary.CompletedSteps}}/{{.Summary.TotalSteps}} steps · {{.Summary.Percentage}}%</small></p>
{{template "progressBar" .Summary.Percentage}}
</div>{{end}}`

var pageHTML = map[string]string{
	PageHome: `{{define "content"}}
<h1>Build the habits that compound</h1>
<p>Pick a roadmap, work through one step at a time, and tick it off when the completion signal shows up.</p>
{{with .Body.InProgress}}<h2>Continue</h2><div class="grid">{{range .}}{{template "roadmapCard" .}}{{end}}</div>{{end}}
{{with .Body.Available}}<h2>Start something new</h2><div class="grid">{{range .}}{{template "roadmapCard" .}}{{end}}</div>{{end}}
{{end}}`,

	PageAbout: `{{define "content"}}
<h1>About Edify</h1>
<p>Edify is a set of self-paced roadmaps for students and early-career learners. Each roadmap is split into phases; each phase into concrete steps with a focus, a trap to avoid, a common mistake and a signal that tells you the step is done.</p>
<p>There are no accounts. Your progress stays with this installation and can be reset per roadmap at any time.</p>
{{end}}`,

	PageRoadmaps: `{{define "content"}}
<h1>Roadmaps</h1>
<div class="grid">{{range .Body.Cards}}{{template "roadmapCard" .}}{{end}}</div>
{{end}}`,

	PageRoadmap: `{{define "content"}}{{with .Body}}{{$roadmap := .Roadmap}}{{$summary := .Summary}}
<div class="{{colorClass $roadmap.Color}}">
<h1>{{$roadmap.Icon}} {{$roadmap.Title}}</h1>
<p>{{$roadmap.Description}}</p>
<p><small>{{$roadmap.Duration}} · {{$summary.CompletedSteps}}/{{$summary.TotalSteps}} steps · {{$summary.Percentage}}%{{if $summary.IsComplete}} · complete{{end}}</small></p>
{{template "progressBar" $summary.Percentage}}
{{range $pi, $phase := $roadmap.Phases}}{{$ps := index $summary.Phases $pi}}
<section class="card" id="phase-{{$pi}}">
<h2>Phase {{inc $pi}}: {{$phase.Name}} <small>{{$ps.Percentage}}%</small></h2>
<p>{{$phase.Description}}</p>
{{template "progressBar" $ps.Percentage}}
{{range $si, $step := $phase.Steps}}{{$done := index $ps.Steps $si}}
<div class="step{{if $done}} done{{end}}" id="step-{{$pi}}-{{$si}}">
<h4>{{$step.Title}}</h4>
<p>{{$step.Instruction}}</p>
<ul>
<li><strong>Focus:</strong> {{$step.Focus}}</li>
<li><strong>Avoid:</strong> {{$step.Avoid}}</li>
<li><strong>Common mistake:</strong> {{$step.CommonMistake}}</li>
<li><strong>Done when:</strong> {{$step.CompletionSignal}}</li>
</ul>
<form method="post" action="/roadmaps/{{$roadmap.ID}}/phases/{{$pi}}/steps/{{$si}}/toggle">
<button type="submit">{{if $done}}Mark incomplete{{else}}Mark complete{{end}}</button>
</form>
</div>{{end}}
{{if $phase.Reflection}}<p><em>Reflect: {{$phase.Reflection}}</em></p>{{end}}
</section>{{end}}
{{if $summary.Started}}<form method="post" action="/roadmaps/{{$roadmap.ID}}/reset"><button type="submit">Reset progress</button></form>{{end}}
</div>{{end}}{{end}}`,

	PageResources: `{{define "content"}}
<h1>Resources</h1>
{{range .Body.Categories}}<section class="card">
<h2>{{.Icon}} {{.Category}}</h2>
<p>{{.Description}}</p>
{{range .Items}}<div class="step">
<h4>{{.Title}}</h4>
<p>{{.Purpose}}</p>
<p><strong>How to use:</strong> {{.HowToUse}}</p>
<p><strong>Advice:</strong> {{.ActionableAdvice}}</p>
</div>{{end}}
</section>{{end}}
{{end}}`,

	PageAppHub: `{{define "content"}}
<h1>App Hub</h1>
{{range .Body.Categories}}<section class="card">
<h2>{{.Category}}</h2>
{{range .Items}}<div class="step">
<h4>{{.Title}}</h4>
<p>{{.Description}}</p>
{{with .Steps}}<ol>{{range .}}<li>{{.}}</li>{{end}}</ol>{{end}}
</div>{{end}}
</section>{{end}}
{{end}}`,

	PageContact: `{{define "content"}}
<h1>Contact</h1>
{{with .Body.Submission}}<p>Thanks{{if .Name}}, {{.Name}}{{end}}. Your message was received (reference {{.ID}}).</p>
{{else}}<form method="post" action="/contact">
<label>Name <input name="name" value="{{.Body.Form.Name}}" maxlength="200"></label>
<label>Email (optional) <input type="email" name="email" value="{{.Body.Form.Email}}" maxlength="320"></label>
<label>Message <textarea name="message" rows="6" required maxlength="5000">{{.Body.Form.Message}}</textarea></label>
<p><button type="submit">Send</button></p>
</form>{{end}}
{{end}}`,

	PageNotFound: `{{define "content"}}
<h1>Not found</h1>
<p>That page does not exist. Try the <a href="/roadmaps">roadmaps</a>.</p>
{{end}}`,
}
