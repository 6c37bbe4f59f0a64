package codebase

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dhamidi/dartclass/dart"
	"github.com/dhamidi/dartclass/edit"
	"github.com/dhamidi/dartclass/generate"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "dartclass"

var log = commonlog.GetLogger("dartclass.lsp")

type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
	options  generate.Options
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
		options: generate.DefaultOptions(),
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCodeAction: ls.textDocumentCodeAction,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.codebase = New(rootDir)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CodeActionProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.codebase.ScanAll(); err != nil {
		log.Errorf("initial scan: %v", err)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	return ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text))
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			return ls.codebase.UpdateFile(path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		return ls.codebase.UpdateFile(path, []byte(*params.Text))
	}
	return ls.codebase.ScanFile(path)
}

// textDocumentCodeAction offers one "Generate data class" action per
// valid class whose span intersects the requested range. Each action
// carries the complete workspace edit; nothing is executed server-side.
func (ls *LSPServer) textDocumentCodeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		if err := ls.codebase.ScanFile(path); err != nil {
			return nil, nil
		}
		file = ls.codebase.GetFile(path)
	}
	if file == nil {
		return nil, nil
	}

	var actions []protocol.CodeAction
	for _, cached := range file.Classes {
		if !cached.IsValid() || cached.IsStateClass() {
			continue
		}
		if !spanIntersects(cached, params.Range) {
			continue
		}
		action, err := ls.generateAction(params.TextDocument.URI, file, cached.Name)
		if err != nil {
			log.Errorf("code action for %s: %v", cached.Name, err)
			continue
		}
		if action != nil {
			actions = append(actions, *action)
		}
	}
	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

// generateAction re-scans the cached content and populates only the named
// class; populated models are consumed by planning and must be fresh.
func (ls *LSPServer) generateAction(uri protocol.DocumentUri, file *FileInfo, className string) (*protocol.CodeAction, error) {
	classes, imports, err := dart.ClassModelsFromSource(file.Content, dart.WithSourcePath(file.Path))
	if err != nil {
		return nil, err
	}
	for _, c := range dart.SelectClasses(classes, []string{className}) {
		generate.DataClass(c, imports, ls.options)
	}
	edits, err := edit.Plan(classes, imports, file.WorkspaceName)
	if err != nil {
		return nil, err
	}
	if len(edits) == 0 {
		return nil, nil
	}

	kind := protocol.CodeActionKindRefactorRewrite
	return &protocol.CodeAction{
		Title: fmt.Sprintf("Generate data class for '%s'", className),
		Kind:  &kind,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{
				uri: protocolEdits(string(file.Content), edits),
			},
		},
	}, nil
}

func protocolEdits(content string, edits []edit.TextEdit) []protocol.TextEdit {
	lines := strings.Split(content, "\n")
	var out []protocol.TextEdit
	for _, e := range edits {
		if e.IsInsert() {
			pos := protocol.Position{Line: uint32(e.StartLine)}
			out = append(out, protocol.TextEdit{
				Range:   protocol.Range{Start: pos, End: pos},
				NewText: e.NewText + "\n",
			})
			continue
		}
		start := protocol.Position{Line: uint32(e.StartLine)}
		if e.EndLine+1 < len(lines) {
			out = append(out, protocol.TextEdit{
				Range:   protocol.Range{Start: start, End: protocol.Position{Line: uint32(e.EndLine + 1)}},
				NewText: e.NewText + "\n",
			})
		} else {
			last := lines[e.EndLine]
			out = append(out, protocol.TextEdit{
				Range: protocol.Range{
					Start: start,
					End:   protocol.Position{Line: uint32(e.EndLine), Character: uint32(len(last))},
				},
				NewText: e.NewText,
			})
		}
	}
	return out
}

func spanIntersects(c *dart.ClassModel, r protocol.Range) bool {
	if !c.HasEnding() {
		return false
	}
	return int(r.Start.Line) <= c.EndLine && int(r.End.Line) >= c.StartLine
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
