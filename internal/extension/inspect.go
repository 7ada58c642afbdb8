package extension

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/agentx-labs/exthost/internal/contrib"
	"github.com/agentx-labs/exthost/internal/registration"
)

// Inspect runs ext's entry points in build mode on a private context and
// returns the metadata their decorators attached. Nothing is registered or
// buffered, so no registrars are needed.
func Inspect(ext *LoadedExtension, importer Importer, logger *slog.Logger) ([]registration.Metadata, error) {
	if importer == nil {
		importer = DefaultImporter()
	}
	regCtx := registration.New()
	regCtx.SetMode(registration.ModeBuild)
	d := contrib.New(regCtx, logger)

	if err := importer.Install(ext); err != nil {
		return nil, &ImportError{ExtensionID: ext.ID, Err: err}
	}
	for _, ep := range ext.Manifest.EntryPoints() {
		if err := inspectEntryPoint(d, ext, importer, ep); err != nil {
			return regCtx.Attached(), err
		}
	}
	return regCtx.Attached(), nil
}

func inspectEntryPoint(d *contrib.Decorators, ext *LoadedExtension, importer Importer, path string) (err error) {
	fn, err := importer.Import(ext, path)
	if err != nil {
		return &ImportError{ExtensionID: ext.ID, EntryPoint: path, Err: err}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &ImportError{
				ExtensionID: ext.ID,
				EntryPoint:  path,
				Err:         fmt.Errorf("panic: %v", r),
				Panic:       r,
				Stack:       debug.Stack(),
			}
		}
	}()
	if err := fn(d); err != nil {
		return &ImportError{ExtensionID: ext.ID, EntryPoint: path, Err: err}
	}
	return nil
}
