package services

import (
	"context"
)

// Engine bundles the dispatch services behind one handle. Embedding
// processes reach every state machine through it.
type Engine struct {
	Ambulances  *AmbulanceService
	Calls       *CallService
	Waypoints   *WaypointService
	Locations   *LocationService
	Hospitals   *HospitalService
	Permissions *PermissionService
	Dispatcher  *Dispatcher
}

// Seed republishes the retained broker state from the store: every
// ambulance and every call that has not ended. Run at startup so
// subscribers recover current state after a broker wipe or restart.
func (e *Engine) Seed(ctx context.Context) error {
	ambulances, err := e.Ambulances.List(ctx)
	if err != nil {
		return err
	}
	for _, ambulance := range ambulances {
		e.Dispatcher.PublishAmbulance(ctx, ambulance)
	}

	calls, err := e.Calls.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, call := range calls {
		e.Dispatcher.PublishCall(ctx, call, true)
	}
	return nil
}
