package main

import "encoding/json"

// Registry object model for the monitor stream. Each batch is a JSON array
// of globals; anything that does not look like a metadata, node or device
// object is skipped rather than rejected, mirroring the dump format's
// open-ended object set.

const (
	typeMetadata = "PipeWire:Interface:Metadata"
	typeNode     = "PipeWire:Interface:Node"
	typeDevice   = "PipeWire:Interface:Device"

	defaultSinkKey = "default.audio.sink"
)

// registryObject is one global from a monitor batch.
type registryObject struct {
	ID       int             `json:"id"`
	Type     string          `json:"type"`
	Info     json.RawMessage `json:"info"`
	Metadata []metadataEntry `json:"metadata"`
}

type metadataEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type nodeProps struct {
	Name              string `json:"node.name"`
	DeviceID          int    `json:"device.id"`
	CardProfileDevice int    `json:"card.profile.device"`
}

type nodeInfo struct {
	Props nodeProps `json:"props"`
}

type deviceRoute struct {
	Index     int         `json:"index"`
	Direction string      `json:"direction"`
	Props     *routeProps `json:"props"`
}

type deviceInfo struct {
	Params struct {
		Route []deviceRoute `json:"Route"`
	} `json:"params"`
}

// target identifies the resolved default sink for the rest of the
// invocation. Set exactly once.
type target struct {
	NodeID            int
	DeviceID          int
	CardProfileDevice int
}

// registry is the incrementally populated snapshot of the server's globals.
// Identity facts (default sink name, node properties) are latched on first
// observation; device route state is always updated, since later batches
// carry the parameter-change notifications we wait on.
type registry struct {
	defaultSinkName string
	nodes           map[int]nodeProps
	devices         map[int][]deviceRoute
}

func newRegistry() *registry {
	return &registry{
		nodes:   make(map[int]nodeProps),
		devices: make(map[int][]deviceRoute),
	}
}

// ingest folds one monitor batch into the snapshot. It performs no I/O.
func (r *registry) ingest(b batch) {
	for _, obj := range b {
		switch obj.Type {
		case typeMetadata:
			r.ingestMetadata(obj)
		case typeNode:
			var info nodeInfo
			if err := json.Unmarshal(obj.Info, &info); err != nil || info.Props.Name == "" {
				continue
			}
			if _, seen := r.nodes[obj.ID]; !seen {
				r.nodes[obj.ID] = info.Props
			}
		case typeDevice:
			var info deviceInfo
			if err := json.Unmarshal(obj.Info, &info); err != nil {
				continue
			}
			if len(info.Params.Route) > 0 {
				r.devices[obj.ID] = info.Params.Route
			}
		}
	}
}

func (r *registry) ingestMetadata(obj registryObject) {
	for _, entry := range obj.Metadata {
		if entry.Key != defaultSinkKey {
			continue
		}
		var val struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(entry.Value, &val); err != nil || val.Name == "" {
			continue
		}
		// First observed default wins; later claims are ignored for the
		// remainder of the invocation.
		if r.defaultSinkName == "" {
			r.defaultSinkName = val.Name
		}
	}
}

// resolve reports the default sink target once the metadata claim and the
// matching node have both been observed.
func (r *registry) resolve() (target, bool) {
	if r.defaultSinkName == "" {
		return target{}, false
	}
	for id, props := range r.nodes {
		if props.Name == r.defaultSinkName {
			return target{
				NodeID:            id,
				DeviceID:          props.DeviceID,
				CardProfileDevice: props.CardProfileDevice,
			}, true
		}
	}
	return target{}, false
}

// outputRoute returns the device's output route, if one has been advertised.
func (r *registry) outputRoute(deviceID int) (deviceRoute, bool) {
	for _, rt := range r.devices[deviceID] {
		if rt.Direction == "Output" && rt.Props != nil {
			return rt, true
		}
	}
	return deviceRoute{}, false
}
