package models

// Location 經緯度座標
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PickupCenter 代表取貨中心
type PickupCenter struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	District    string   `json:"district"`
	Division    string   `json:"division"`
	Coordinates Location `json:"coordinates"`
	Address     string   `json:"address"`
}

// NearbyCenter is a pickup center annotated with its distance from the visitor.
type NearbyCenter struct {
	PickupCenter
	DistanceKm float64 `json:"distance_km"`
}
