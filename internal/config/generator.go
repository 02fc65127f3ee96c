package config

import (
	"bytes"
	"strconv"
	"strings"
)

// Generator renders Settings back into a Lua settings file.
type Generator struct {
	indent string
}

// NewGenerator creates a generator that indents with two spaces.
func NewGenerator() *Generator {
	return &Generator{indent: "  "}
}

// Generate renders every Lua-settable field of s as an "installer" table.
// The output parses back to the same settings with ParseString.
//
// KeyringPath and SourceListPath are fixed system paths and are omitted.
func (g *Generator) Generate(s *Settings) string {
	var buf bytes.Buffer

	buf.WriteString("-- zerb installer settings\n")
	buf.WriteString("-- Save as ")
	buf.WriteString(DefaultPath)
	buf.WriteString(" or point ")
	buf.WriteString(EnvConfigPath)
	buf.WriteString(" at it.\n\n")

	buf.WriteString(luaGlobalInstaller)
	buf.WriteString(" = {\n")

	g.writeString(&buf, luaFieldProduct, s.Product)
	g.writeString(&buf, luaFieldAURPackage, s.AURPackage)
	buf.WriteString("\n")

	g.writeString(&buf, luaFieldReleaseAPI, s.ReleaseAPI)
	g.writeString(&buf, luaFieldDownloadBase, s.DownloadBase)
	g.writeString(&buf, luaFieldKeyURL, s.KeyURL)
	buf.WriteString("\n")

	g.writeString(&buf, luaFieldRepoURL, s.RepoURL)
	g.writeString(&buf, luaFieldRepoSuite, s.RepoSuite)
	g.writeString(&buf, luaFieldRepoComponent, s.RepoComponent)
	buf.WriteString("\n")

	buf.WriteString(g.indent)
	buf.WriteString(luaFieldHTTPTimeout)
	buf.WriteString(" = ")
	buf.WriteString(strconv.FormatFloat(s.HTTPTimeout.Seconds(), 'f', -1, 64))
	buf.WriteString(", -- seconds\n")

	g.writeString(&buf, luaFieldDownloader, s.Downloader)
	g.writeString(&buf, luaFieldVerifier, s.Verifier)

	if s.InstallDir != "" {
		g.writeString(&buf, luaFieldInstallDir, s.InstallDir)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (g *Generator) writeString(buf *bytes.Buffer, field, value string) {
	buf.WriteString(g.indent)
	buf.WriteString(field)
	buf.WriteString(" = ")
	buf.WriteString(g.quoteLuaString(value))
	buf.WriteString(",\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
