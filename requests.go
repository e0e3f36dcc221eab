package main

// A missing index is sent to the manager as operations.Unset.

type InsertRequest struct {
	BlipID  string `json:"blip_id"`
	Index   *int   `json:"index"`
	Content string `json:"content"`
}

type DeleteRequest struct {
	BlipID string `json:"blip_id"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

type ElementInsertRequest struct {
	BlipID     string         `json:"blip_id"`
	Index      *int           `json:"index"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

type ElementDeleteRequest struct {
	BlipID string `json:"blip_id"`
	Index  *int   `json:"index"`
}

type ElementDeltaRequest struct {
	BlipID string         `json:"blip_id"`
	Index  *int           `json:"index"`
	ID     string         `json:"id"`
	Delta  map[string]any `json:"delta"`
}

type SetPrefRequest struct {
	BlipID string `json:"blip_id"`
	Index  *int   `json:"index"`
	Key    string `json:"key"`
	Value  any    `json:"value"`
}
