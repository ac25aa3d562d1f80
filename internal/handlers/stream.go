package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/drsite/drsite-web/internal/dom"
	"github.com/starfederation/datastar-go/datastar"
)

var patchModes = map[dom.Mode]datastar.ElementPatchMode{
	dom.ModeOuter:  datastar.ElementPatchModeOuter,
	dom.ModeInner:  datastar.ElementPatchModeInner,
	dom.ModeAppend: datastar.ElementPatchModeAppend,
	dom.ModeAfter:  datastar.ElementPatchModeAfter,
	dom.ModeRemove: datastar.ElementPatchModeRemove,
}

// writePatch sends one page patch as a datastar event.
func writePatch(sse *datastar.ServerSentEventGenerator, p dom.Patch) error {
	switch p.Kind {
	case dom.KindElements:
		mode, ok := patchModes[p.Mode]
		if !ok {
			return fmt.Errorf("unsupported patch mode %q", p.Mode)
		}
		opts := []datastar.PatchElementOption{datastar.WithMode(mode)}
		if p.Selector != "" {
			opts = append(opts, datastar.WithSelector(p.Selector))
		}
		return sse.PatchElements(p.HTML, opts...)
	case dom.KindSignals:
		data, err := json.Marshal(p.Signals)
		if err != nil {
			return fmt.Errorf("failed to encode signals: %w", err)
		}
		return sse.PatchSignals(data)
	case dom.KindRedirect:
		return sse.Redirect(p.URL)
	default:
		return fmt.Errorf("unknown patch kind %d", p.Kind)
	}
}
