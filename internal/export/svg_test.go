package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/sketchboard/internal/board"
	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/engine"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(document.NewFactory(&document.SequentialIDs{}))
	if _, err := e.AddRectangle(0, 0, 10, 10); err != nil {
		t.Fatal(err)
	}
	e.SelectAll()
	return e
}

func TestWriteSVG(t *testing.T) {
	var sb strings.Builder
	if err := WriteSVG(&sb, testEngine(t).DisplayList()); err != nil {
		t.Fatal(err)
	}
	out := sb.String()

	for _, want := range []string{
		`viewBox="-10 -10 30 30"`,
		`<path id="rectangle_1"`,
		`fill="#ffffff"`,
		`stroke="#000000"`,
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg lacks %s:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "<path"); n != 1 {
		t.Errorf("got %d paths, want 1 (overlays must be skipped)", n)
	}
}

type lister map[string][]engine.DrawCommand

func (l lister) DisplayList(_ context.Context, id string) ([]engine.DrawCommand, error) {
	cmds, ok := l[id]
	if !ok {
		return nil, board.ErrNotFound
	}
	return cmds, nil
}

func TestExportHandler(t *testing.T) {
	r := mux.NewRouter()
	h := NewHandler(lister{"board_1": testEngine(t).DisplayList()})
	r.HandleFunc("/boards/{boardId}/export.svg", h.ExportSVG)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/boards/board_1/export.svg", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("status = %d, type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/boards/board_2/export.svg", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing board status = %d", rec.Code)
	}
}
