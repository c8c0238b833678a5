package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// ConfigurationService manages the reference data used by listings: regions, vehicle categories,
// brands and equipment.
type ConfigurationService service

func (s *ConfigurationService) ListRegions(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/regions/", nil)
}

func (s *ConfigurationService) GetRegion(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/regions/%d/", id), nil)
}

// RegionConcessions lists the dealerships located in a region
func (s *ConfigurationService) RegionConcessions(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/regions/%d/concessions/", id), nil)
}

func (s *ConfigurationService) CreateRegion(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.post(ctx, "/regions/", data)
}

func (s *ConfigurationService) UpdateRegion(ctx context.Context, id int, data any) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/regions/%d/", id), data)
}

func (s *ConfigurationService) DeleteRegion(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/regions/%d/", id))
}

func (s *ConfigurationService) ListCategories(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/vehicules/categories/", nil)
}

func (s *ConfigurationService) CreateCategory(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.post(ctx, "/vehicules/categories/", data)
}

func (s *ConfigurationService) DeleteCategory(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/vehicules/categories/%d/", id))
}

func (s *ConfigurationService) ListBrands(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/vehicules/marques/", nil)
}

func (s *ConfigurationService) CreateBrand(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.post(ctx, "/vehicules/marques/", data)
}

func (s *ConfigurationService) DeleteBrand(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/vehicules/marques/%d/", id))
}

func (s *ConfigurationService) ListEquipment(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/equipements/", nil)
}
