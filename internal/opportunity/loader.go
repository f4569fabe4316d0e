package opportunity

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/common/validation"
	"valyntra-workers/internal/models"
)

type catalogFile struct {
	Industries []industryEntry `yaml:"industries"`
}

type industryEntry struct {
	Name     string         `yaml:"name"`
	UseCases []useCaseEntry `yaml:"use_cases"`
}

type useCaseEntry struct {
	Name   string `yaml:"name"`
	Tag    string `yaml:"tag"`
	Impact string `yaml:"impact"`
	Effort string `yaml:"effort"`
	ROI    string `yaml:"roi"`
}

var nonEmptyString = map[string]interface{}{"type": "string", "minLength": 1}

var catalogSchema = validation.Schema{
	"type":     "object",
	"required": []string{"industries"},
	"properties": map[string]interface{}{
		"industries": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"name", "use_cases"},
				"properties": map[string]interface{}{
					"name": nonEmptyString,
					"use_cases": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":                 "object",
							"required":             []string{"name", "tag", "impact", "effort", "roi"},
							"additionalProperties": false,
							"properties": map[string]interface{}{
								"name":   nonEmptyString,
								"tag":    nonEmptyString,
								"impact": nonEmptyString,
								"effort": nonEmptyString,
								"roi":    nonEmptyString,
							},
						},
					},
				},
			},
		},
	},
}

// LoadCatalog reads a YAML use-case catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(fmt.Sprintf("read %s", path), err)
	}
	return ParseCatalog(data)
}

// ParseCatalog validates a YAML catalog document against the catalog schema
// and converts it into a Catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewCatalogInvalidError("malformed yaml", err)
	}

	result, err := validation.Validate(raw, catalogSchema)
	if err != nil {
		return nil, errors.NewCatalogInvalidError("schema check failed", err)
	}
	if !result.Valid {
		return nil, errors.NewCatalogInvalidError(strings.Join(result.GetErrorMessages(), "; "), nil)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewCatalogInvalidError("malformed yaml", err)
	}

	entries := make(map[string][]models.UseCase, len(file.Industries))
	for _, industry := range file.Industries {
		if _, dup := entries[industry.Name]; dup {
			return nil, errors.NewCatalogInvalidError(fmt.Sprintf("industry %q is defined twice", industry.Name), nil)
		}

		useCases := make([]models.UseCase, 0, len(industry.UseCases))
		for _, entry := range industry.UseCases {
			useCase, err := entry.toUseCase()
			if err != nil {
				return nil, errors.NewCatalogInvalidError(fmt.Sprintf("industry %q, use case %q", industry.Name, entry.Name), err)
			}
			useCases = append(useCases, useCase)
		}
		entries[industry.Name] = useCases
	}

	catalog, err := NewCatalog(entries)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error(), err)
	}
	return catalog, nil
}

func (e useCaseEntry) toUseCase() (models.UseCase, error) {
	impact, err := models.ParseImpact(e.Impact)
	if err != nil {
		return models.UseCase{}, err
	}
	effort, err := models.ParseEffort(e.Effort)
	if err != nil {
		return models.UseCase{}, err
	}
	roi, err := models.ParseROI(e.ROI)
	if err != nil {
		return models.UseCase{}, err
	}
	return models.UseCase{Name: e.Name, Tag: e.Tag, Impact: impact, Effort: effort, ROI: roi}, nil
}

// WriteCatalog encodes c in the format ParseCatalog reads. Industries are
// written in name order.
func WriteCatalog(w io.Writer, c *Catalog) error {
	var file catalogFile
	for _, name := range c.Industries() {
		useCases, _ := c.UseCases(name)
		entry := industryEntry{Name: name}
		for _, uc := range useCases {
			entry.UseCases = append(entry.UseCases, useCaseEntry{
				Name:   uc.Name,
				Tag:    uc.Tag,
				Impact: uc.Impact.String(),
				Effort: uc.Effort.String(),
				ROI:    uc.ROI.String(),
			})
		}
		file.Industries = append(file.Industries, entry)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return err
	}
	return enc.Close()
}
