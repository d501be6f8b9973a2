package common

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sablelang/sable/internal/token"
)

// BuildContext carries the error accumulators and per-run state for a
// single analysis run. A context is constructed per run and discarded;
// re-running with a stale context would mix error checkpoints.
type BuildContext struct {
	FileMap         map[string]*token.File
	Errors          *ErrorList
	ErrorCheckpoint int
	Logger          *zap.Logger
}

func NewBuildContext() *BuildContext {
	return &BuildContext{
		FileMap: make(map[string]*token.File),
		Errors:  &ErrorList{},
		Logger:  zap.NewNop(),
	}
}

// WithLogger returns the context with the given logger attached. Passes
// log at Debug level; the default logger discards everything.
func (ctx *BuildContext) WithLogger(logger *zap.Logger) *BuildContext {
	ctx.Logger = logger
	return ctx
}

func (ctx *BuildContext) LookupFile(filename string) *token.File {
	if found, ok := ctx.FileMap[filename]; ok {
		return found
	}
	return nil
}

func (ctx *BuildContext) NewFile(filename string, src []byte) *token.File {
	file := &token.File{Filename: filename, Src: src}
	ctx.FileMap[filename] = file
	return file
}

func (ctx *BuildContext) SetCheckpoint() {
	ctx.ErrorCheckpoint = len(ctx.Errors.Errors)
}

func (ctx *BuildContext) IsErrorSinceCheckpoint() bool {
	return len(ctx.Errors.Errors) > ctx.ErrorCheckpoint
}

func (ctx *BuildContext) IsError() bool {
	return ctx.Errors.IsError()
}

// FormatErrors sorts the accumulated messages and attaches source context
// lines for every error whose file is known to the context.
func (ctx *BuildContext) FormatErrors() {
	ctx.Errors.Sort()
	ctx.setErrorLocations()
}

type fileLinesCache map[string][]string

func (ctx *BuildContext) fileLines(cache fileLinesCache, filename string) []string {
	if found, ok := cache[filename]; ok {
		return found
	}
	file := ctx.FileMap[filename]
	if file == nil {
		cache[filename] = nil
		return nil
	}
	reader := bytes.NewReader(file.Src)
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	cache[filename] = lines
	return lines
}

var notWSRegex = regexp.MustCompile(`\S`)

func (ctx *BuildContext) setErrorLocations() {
	cache := make(fileLinesCache)
	ctx.setErrorLocations2(cache, ctx.Errors.Warnings)
	ctx.setErrorLocations2(cache, ctx.Errors.Errors)
}

func (ctx *BuildContext) setErrorLocations2(cache fileLinesCache, errors []*Error) {
	var lines []string
	filename := ""
	for _, e := range errors {
		if len(e.Context) > 0 || !e.Pos.IsValid() {
			continue
		}
		if e.Pos.Filename != filename {
			lines = nil
			filename = e.Pos.Filename
			if len(filename) > 0 {
				lines = ctx.fileLines(cache, filename)
			}
		}
		linePos := e.Pos.Line - 1
		if linePos < 0 || linePos >= len(lines) {
			continue
		}
		line := lines[linePos]
		lineLen := len(line)
		if lineLen > 200 {
			line = line[:200]
			lineLen = len(line)
			line += "..."
		}
		columnPos := e.Pos.Column - 1
		if columnPos < 0 || columnPos >= lineLen {
			continue
		}
		mark := notWSRegex.ReplaceAllString(line[:columnPos], " ")
		markCount := (e.EndPos.Column - 1) - columnPos
		if e.EndPos.Line == e.Pos.Line && markCount > 1 && markCount < lineLen {
			mark += BoldGreen(strings.Repeat("~", markCount))
		} else {
			mark += BoldGreen("^")
		}
		e.Context = append(e.Context, line)
		e.Context = append(e.Context, mark)
	}
}
