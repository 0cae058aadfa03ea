package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Builds the release download page. The README is rendered to HTML and its
// Installation section is replaced with a table of the archives goreleaser
// wrote into the dist directory.
func main() {
	if len(os.Args) != 2 {
		fatal("Usage: %s <dist-dir>", os.Args[0])
	}
	distDir := os.Args[1]

	readme, err := os.ReadFile("README.md")
	if err != nil {
		fatal("reading README.md: %v", err)
	}

	assets := collectAssets(distDir)
	page := renderReadme(readme)
	page = spliceDownloads(page, downloadsSection(assets))

	var buf bytes.Buffer
	buf.WriteString(pageTop)
	buf.Write(page)
	buf.WriteString(pageBottom)

	indexPath := filepath.Join(distDir, "index.html")
	if err := os.WriteFile(indexPath, buf.Bytes(), 0o644); err != nil {
		fatal("writing %s: %v", indexPath, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d archives)\n", indexPath, len(assets))
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// renderReadme turns the README markdown into an HTML fragment. Heading IDs
// are generated so the Installation section can be located afterwards.
func renderReadme(src []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(p.Parse(src), r)
}

// archiveName matches goreleaser's default naming,
// kvset_<version>_<OS>_<arch>.<ext>, and captures the three variable parts.
var archiveName = regexp.MustCompile(`^kvset_(.+)_(Darwin|Linux|Windows)_(arm64|x86_64)\.(?:tar\.gz|zip)$`)

type asset struct {
	version string
	osName  string
	arch    string
	file    string
	size    int64
}

// label returns the human platform name shown in the table. Darwin archives
// are labelled by CPU family since that is what Mac users look for.
func (a asset) label() string {
	switch a.osName {
	case "Darwin":
		if a.arch == "arm64" {
			return "macOS (Apple Silicon)"
		}
		return "macOS (Intel)"
	default:
		arch := a.arch
		if arch == "arm64" {
			arch = "ARM64"
		}
		return fmt.Sprintf("%s (%s)", a.osName, arch)
	}
}

// collectAssets scans the dist directory once and keeps every archive whose
// name matches the release naming scheme. Checksum files and unpacked
// binaries fall through the regexp. The result is sorted by file name so
// the table order is stable across runs.
func collectAssets(distDir string) []asset {
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return nil
	}

	var assets []asset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := archiveName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		a := asset{version: m[1], osName: m[2], arch: m[3], file: entry.Name()}
		if info, err := entry.Info(); err == nil {
			a.size = info.Size()
		}
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].file < assets[j].file })
	return assets
}

func humanSize(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d KB", n/(1<<10))
}

// downloadsSection renders the replacement Installation section: a download
// table plus the extraction one-liner. Links are relative because
// index.html is published next to the archives.
func downloadsSection(assets []asset) string {
	version := "unknown"
	if len(assets) > 0 {
		version = assets[0].version
	}

	var sb strings.Builder
	sb.WriteString("<h2 id=\"installation\">Installation</h2>\n")
	sb.WriteString("<section class=\"releases\">\n")
	fmt.Fprintf(&sb, "<h3>Release %s</h3>\n", version)
	sb.WriteString("<table class=\"assets\">\n<tr><th>Platform</th><th>Archive</th><th>Size</th></tr>\n")
	for _, a := range assets {
		fmt.Fprintf(&sb, "<tr><td class=\"asset-os\">%s</td><td><a class=\"asset-link\" href=\"%s\">%s</a></td><td>%s</td></tr>\n",
			a.label(), a.file, a.file, humanSize(a.size))
	}
	sb.WriteString("</table>\n</section>\n")
	sb.WriteString(`<p>Unpack the archive and put the binary on your PATH:</p>
<pre><code class="language-bash">tar -xzf kvset_*.tar.gz &amp;&amp; sudo mv kvset /usr/local/bin/
# on Windows, extract the .zip and add kvset.exe to %PATH%
</code></pre>
`)
	return sb.String()
}

var (
	installHeading = regexp.MustCompile(`<h2 id="install(?:ation)?">`)
	anyHeading     = regexp.MustCompile(`<h2 id="`)
)

// spliceDownloads replaces everything from the README's Installation
// heading up to the next h2 with the generated section. A README without an
// Installation section is passed through untouched.
func spliceDownloads(page []byte, section string) []byte {
	start := installHeading.FindIndex(page)
	if start == nil {
		return page
	}
	rest := page[start[1]:]
	next := anyHeading.FindIndex(rest)
	if next == nil {
		return page
	}

	var out bytes.Buffer
	out.Write(page[:start[0]])
	out.WriteString(section)
	out.Write(rest[next[0]:])
	return out.Bytes()
}

const pageTop = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>kvset releases</title>
<style>
:root { --ink: #1c2733; --accent: #0f766e; --accent-soft: #f0fdfa; --panel: #f8fafc; }
body { font-family: "Inter", system-ui, sans-serif; color: var(--ink); max-width: 860px; margin: 3rem auto; padding: 0 1.25rem; line-height: 1.55; }
h1, h2, h3 { color: var(--accent); }
h1 { border-bottom: 3px solid var(--accent); padding-bottom: .4rem; }
a { color: var(--accent); }
code { background: var(--panel); border-radius: 4px; padding: .1rem .35rem; font-size: .92em; }
pre { background: #0f172a; color: #f1f5f9; padding: 1rem; border-radius: 8px; overflow-x: auto; }
pre code { background: transparent; padding: 0; color: inherit; }
.releases { background: var(--accent-soft); border: 1px solid var(--accent); border-radius: 8px; padding: 1rem 1.25rem; margin: 1.25rem 0; }
.releases h3 { margin-top: 0; }
table.assets { border-collapse: collapse; width: 100%; }
table.assets th { text-align: left; border-bottom: 2px solid var(--accent); padding: .3rem .5rem; }
table.assets td { padding: .3rem .5rem; border-bottom: 1px solid #cbd5e1; }
.asset-os { font-weight: 600; white-space: nowrap; }
.asset-link { text-decoration: none; font-family: monospace; }
.asset-link:hover { text-decoration: underline; }
</style>
</head>
<body>
`

const pageBottom = `</body>
</html>
`
