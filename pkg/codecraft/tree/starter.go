package tree

const starterIndexJS = `import React from 'react'
import { createRoot } from 'react-dom/client'
import App from './App.js'

const root = createRoot(document.getElementById('root'))
root.render(<App />)
`

const starterAppJS = `import React from 'react'
import './styles.css'

export default function App() {
  return (
    <div className="app">
      <h1>CodeCraft</h1>
      <p>Starter project ready. Edit files to see live updates.</p>
    </div>
  )
}
`

const starterStylesCSS = `body{margin:0;background:#0b0d12;color:#e6e6e6;font-family:Inter,ui-sans-serif,system-ui,Segoe UI,Helvetica,Arial,sans-serif}`

const starterIndexHTML = `<!doctype html><html><head><meta charset="UTF-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/><title>CodeCraft</title></head><body style="margin:0;background:#0b0d12;color:#e6e6e6"><div id="root"></div></body></html>`

// Starter returns the canned starter tree used for new projects and as
// the final fallback when neither the remote store nor the local cache
// has a copy.
func Starter() *Node {
	root := NewRoot()
	root = UpsertFile(root, "/index.js", starterIndexJS)
	root = UpsertFile(root, "/App.js", starterAppJS)
	root = UpsertFile(root, "/styles.css", starterStylesCSS)
	root = UpsertFile(root, "/public/index.html", starterIndexHTML)
	return root
}

// StarterRecords returns the starter project in wire form, matching the
// file set the remote store seeds on project creation.
func StarterRecords() []FlatRecord {
	return FlatRecords(Starter())
}
