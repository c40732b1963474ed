package services

import (
	"github.com/rescuenet/dispatch/internal/domain/entities"
)

// Object kinds permissions can be checked against.
const (
	KindAmbulance = "ambulance"
	KindHospital  = "hospital"
	KindEquipment = "equipment"
)

// Permissions is one user's resolved grant snapshot. The kind set is fixed:
// ambulances and hospitals carry direct grants, equipment access derives
// from the holder of whichever object was granted. Lookup tables are built
// once at resolution time so membership checks stay O(1).
type Permissions struct {
	Ambulances map[string]entities.ObjectGrant
	Hospitals  map[string]entities.ObjectGrant
	Equipments map[string]entities.ObjectGrant

	canRead  map[string]map[string]struct{}
	canWrite map[string]map[string]struct{}
}

func newPermissions() *Permissions {
	return &Permissions{
		Ambulances: map[string]entities.ObjectGrant{},
		Hospitals:  map[string]entities.ObjectGrant{},
		Equipments: map[string]entities.ObjectGrant{},
	}
}

// grantMaps is the fixed dispatch from kind to grant map; no kind is ever
// derived from a runtime string.
func (p *Permissions) grantMaps() map[string]map[string]entities.ObjectGrant {
	return map[string]map[string]entities.ObjectGrant{
		KindAmbulance: p.Ambulances,
		KindHospital:  p.Hospitals,
		KindEquipment: p.Equipments,
	}
}

// merge overwrites any earlier grant for the same object. Resolution order
// makes this the precedence rule: later groups beat earlier groups, user
// grants beat everything.
func (p *Permissions) merge(kind string, grants []*entities.ObjectGrant) {
	target, ok := p.grantMaps()[kind]
	if !ok {
		return
	}
	for _, grant := range grants {
		target[grant.ObjectID] = *grant
		if grant.EquipmentHolderID != "" {
			p.Equipments[grant.EquipmentHolderID] = entities.ObjectGrant{
				ObjectID:          grant.EquipmentHolderID,
				EquipmentHolderID: grant.EquipmentHolderID,
				CanRead:           grant.CanRead,
				CanWrite:          grant.CanWrite,
			}
		}
	}
}

// freeze builds the membership sets from the final grant maps.
func (p *Permissions) freeze() {
	p.canRead = map[string]map[string]struct{}{}
	p.canWrite = map[string]map[string]struct{}{}
	for kind, grants := range p.grantMaps() {
		read := map[string]struct{}{}
		write := map[string]struct{}{}
		for id, grant := range grants {
			if grant.CanRead {
				read[id] = struct{}{}
			}
			if grant.CanWrite {
				write[id] = struct{}{}
			}
		}
		p.canRead[kind] = read
		p.canWrite[kind] = write
	}
}

// CanRead reports whether the snapshot grants read on the object.
// Unknown kinds are not an error, just never readable.
func (p *Permissions) CanRead(kind, objectID string) bool {
	set, ok := p.canRead[kind]
	if !ok {
		return false
	}
	_, ok = set[objectID]
	return ok
}

// CanWrite reports whether the snapshot grants write on the object.
func (p *Permissions) CanWrite(kind, objectID string) bool {
	set, ok := p.canWrite[kind]
	if !ok {
		return false
	}
	_, ok = set[objectID]
	return ok
}
