// Package importer ingests catalog CSV exports. It sits outside the movement
// core and only consumes the item and location creation contracts.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"stocktrail/internal/common"
	"stocktrail/internal/models"
	"stocktrail/internal/repositories"
	"stocktrail/internal/services"
)

var requiredHeaders = []string{"SKU", "Name", "Description", "Category", "Unit", "Barcode", "Location", "Quantity", "MinThreshold", "MaxThreshold"}

// depth → location type when inferring hierarchy from slash-delimited paths.
var depthTypes = []models.LocationType{
	models.LocationWarehouse,
	models.LocationZone,
	models.LocationAisle,
	models.LocationShelf,
	models.LocationBin,
}

type row struct {
	SKU          string
	Name         string
	Description  string
	Category     string
	Unit         string
	Barcode      string
	Location     string
	Quantity     int
	MinThreshold *int
	MaxThreshold *int
}

// RowError pins a validation failure to its CSV row and field.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Result summarizes an import run.
type Result struct {
	Success          bool       `json:"success"`
	ItemsCreated     int        `json:"items_created"`
	ItemsSkipped     int        `json:"items_skipped"`
	LocationsCreated []string   `json:"locations_created"`
	Errors           []RowError `json:"errors"`
	DuplicateSKUs    []string   `json:"duplicate_skus"`
}

type CSVImporter struct {
	itemService     services.ItemService
	locationService services.LocationService
	itemRepo        repositories.ItemRepository
	locationRepo    repositories.LocationRepository
}

func NewCSVImporter(itemService services.ItemService, locationService services.LocationService,
	itemRepo repositories.ItemRepository, locationRepo repositories.LocationRepository) *CSVImporter {
	return &CSVImporter{
		itemService:     itemService,
		locationService: locationService,
		itemRepo:        itemRepo,
		locationRepo:    locationRepo,
	}
}

// Import parses and validates csvData and, unless preview is set, creates the
// missing locations, the items, and their opening allocations. Validation
// errors are collected per row rather than failing fast.
func (imp *CSVImporter) Import(ctx context.Context, csvData string, preview bool) (*Result, error) {
	result := &Result{
		LocationsCreated: []string{},
		Errors:           []RowError{},
		DuplicateSKUs:    []string{},
	}

	rows, err := imp.parse(csvData, result)
	if err != nil {
		return nil, err
	}

	imp.validate(rows, result)

	if preview || len(result.Errors) > 0 {
		result.Success = len(result.Errors) == 0
		return result, nil
	}

	// Rows sharing a SKU describe one item with an allocation per location.
	var order []string
	groups := map[string][]*row{}
	for _, r := range rows {
		if _, ok := groups[r.SKU]; !ok {
			order = append(order, r.SKU)
		}
		groups[r.SKU] = append(groups[r.SKU], r)
	}

	for _, sku := range order {
		group := groups[sku]

		existing, err := imp.itemRepo.GetBySKU(ctx, sku)
		if err != nil && common.ErrorKind(err) != common.KindNotFound {
			return nil, err
		}
		if existing != nil {
			result.DuplicateSKUs = append(result.DuplicateSKUs, sku)
			result.ItemsSkipped++
			continue
		}

		var allocations []*models.StockAllocationInput
		for _, r := range group {
			locationID, created, err := imp.ensureLocationPath(ctx, r.Location)
			if err != nil {
				return nil, err
			}
			result.LocationsCreated = append(result.LocationsCreated, created...)
			allocations = append(allocations, &models.StockAllocationInput{
				LocationID:   locationID,
				Quantity:     r.Quantity,
				MinThreshold: r.MinThreshold,
				MaxThreshold: r.MaxThreshold,
			})
		}

		first := group[0]
		req := &services.ItemCreate{
			SKU:         first.SKU,
			Name:        first.Name,
			Unit:        first.Unit,
			Allocations: allocations,
		}
		if first.Description != "" {
			req.Description = &first.Description
		}
		if first.Category != "" {
			req.Category = &first.Category
		}
		if first.Barcode != "" {
			req.Barcode = &first.Barcode
		}

		if _, err := imp.itemService.Create(ctx, req); err != nil {
			return nil, err
		}
		result.ItemsCreated++
	}

	result.Success = true
	return result, nil
}

func (imp *CSVImporter) parse(csvData string, result *Result) ([]*row, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(csvData)))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must contain header and at least one data row")
	}

	header := records[0]
	index := map[string]int{}
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required headers: %s", strings.Join(missing, ", "))
	}

	field := func(record []string, name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []*row
	for i, record := range records[1:] {
		rowNum := i + 2 // header is row 1

		r := &row{
			SKU:         field(record, "SKU"),
			Name:        field(record, "Name"),
			Description: field(record, "Description"),
			Category:    field(record, "Category"),
			Unit:        field(record, "Unit"),
			Barcode:     field(record, "Barcode"),
			Location:    field(record, "Location"),
		}

		if qty := field(record, "Quantity"); qty != "" {
			n, err := strconv.Atoi(qty)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Row: rowNum, Field: "Quantity", Message: "must be a number", Value: qty})
			} else {
				r.Quantity = n
			}
		}
		for _, name := range []string{"MinThreshold", "MaxThreshold"} {
			raw := field(record, name)
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Row: rowNum, Field: name, Message: "must be a number", Value: raw})
				continue
			}
			if name == "MinThreshold" {
				r.MinThreshold = &n
			} else {
				r.MaxThreshold = &n
			}
		}

		rows = append(rows, r)
	}
	return rows, nil
}

func (imp *CSVImporter) validate(rows []*row, result *Result) {
	for i, r := range rows {
		rowNum := i + 2

		for field, value := range map[string]string{
			"SKU": r.SKU, "Name": r.Name, "Category": r.Category, "Unit": r.Unit, "Location": r.Location,
		} {
			if value == "" {
				result.Errors = append(result.Errors, RowError{Row: rowNum, Field: field, Message: field + " is required"})
			}
		}
		if r.Quantity < 0 {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Field: "Quantity", Message: "cannot be negative"})
		}
	}
}

// ensureLocationPath resolves a slash-delimited location path, creating any
// missing segments with a type inferred from their depth. It returns the leaf
// location id and the paths it created.
func (imp *CSVImporter) ensureLocationPath(ctx context.Context, rawPath string) (uuid.UUID, []string, error) {
	segments := strings.Split(rawPath, "/")
	var created []string
	var parentID *uuid.UUID
	path := ""

	for depth, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		path = path + "/" + services.PathSegment(segment)

		existing, err := imp.locationRepo.GetByPath(ctx, path)
		if err == nil {
			parentID = &existing.ID
			continue
		}
		if common.ErrorKind(err) != common.KindNotFound {
			return uuid.Nil, nil, err
		}

		locationType := models.LocationGeneric
		if depth < len(depthTypes) {
			locationType = depthTypes[depth]
		}
		location, err := imp.locationService.Create(ctx, segment, locationType, parentID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		created = append(created, location.Path)
		parentID = &location.ID
	}

	if parentID == nil {
		return uuid.Nil, nil, fmt.Errorf("location path %q resolves to nothing", rawPath)
	}
	return *parentID, created, nil
}
