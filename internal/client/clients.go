package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// ClientService lets a dealer look up the customers who rented from them
type ClientService service

func (s *ClientService) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/clients/mes-clients/", params)
}

func (s *ClientService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/clients/%d/", id), nil)
}

func (s *ClientService) Statistics(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/clients/%d/statistiques/", id), nil)
}

func (s *ClientService) Locations(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/clients/%d/locations/", id), nil)
}
