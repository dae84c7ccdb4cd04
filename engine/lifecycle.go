package engine

import (
	"errors"
	"fmt"
	"log"
)

// teardownStep runs one teardown action, converting panics and errors into
// log lines plus an accumulated error. Teardown never stops early: a failed
// step must not leak the resources behind it.
func teardownStep(name string, errs *[]error, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Viewer] teardown step %s panicked: %v", name, r)
			*errs = append(*errs, fmt.Errorf("%s: panic: %v", name, r))
		}
	}()
	if err := fn(); err != nil {
		log.Printf("[Viewer] teardown step %s failed: %v", name, err)
		*errs = append(*errs, fmt.Errorf("%s: %w", name, err))
	}
}

// Teardown releases the session in dependency order: the sync loop stops
// before the engines it drives go away, datasets detach before the point-cloud
// engine is destroyed, and surfaces close last. Engines already destroyed by
// an external collaborator are skipped, not re-destroyed.
func (v *viewerImpl) Teardown() error {
	v.mu.Lock()
	if v.downOnce {
		v.mu.Unlock()
		return nil
	}
	v.downOnce = true
	loop := v.loop
	v.loop = nil
	v.mu.Unlock()

	var errs []error

	if loop != nil {
		teardownStep("stop sync loop", &errs, func() error {
			loop.Stop()
			return nil
		})
	}

	teardownStep("clear datasets", &errs, func() error {
		v.pcEng.ClearDatasets()
		return nil
	})

	teardownStep("destroy point cloud engine", &errs, func() error {
		if v.pcEng.IsDestroyed() {
			return nil
		}
		return v.pcEng.Destroy()
	})

	teardownStep("destroy globe engine", &errs, func() error {
		if v.globeEng.IsDestroyed() {
			return nil
		}
		return v.globeEng.Destroy()
	})

	teardownStep("close surfaces", &errs, func() error {
		v.closeSurfaces()
		return nil
	})

	if v.ownedSch != nil {
		teardownStep("stop frame scheduler", &errs, func() error {
			v.ownedSch.stop()
			return nil
		})
	}

	v.signalQuit()
	return errors.Join(errs...)
}
