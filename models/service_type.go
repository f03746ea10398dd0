// models/service_type.go
package models

// ServiceType is one of the procedures the salon offers.
type ServiceType string

const (
	ServiceHaircut     ServiceType = "corte"
	ServiceColoring    ServiceType = "coloracao"
	ServiceHighlights  ServiceType = "luzes"
	ServiceStreaks     ServiceType = "mechas"
	ServiceHydration   ServiceType = "hidratacao"
	ServiceRootTouchUp ServiceType = "retoque_raiz"
	ServiceManicure    ServiceType = "manicure"
	ServicePedicure    ServiceType = "pedicure"
	ServiceGelNails    ServiceType = "unha_gel"
	ServiceNailArt     ServiceType = "nail_art"
)

// DefaultServiceDuration is used when a service is added without a duration.
const DefaultServiceDuration = 60

var serviceTypes = map[ServiceType]bool{
	ServiceHaircut:     false,
	ServiceColoring:    true,
	ServiceHighlights:  true,
	ServiceStreaks:     true,
	ServiceHydration:   false,
	ServiceRootTouchUp: true,
	ServiceManicure:    false,
	ServicePedicure:    false,
	ServiceGelNails:    false,
	ServiceNailArt:     false,
}

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	_, ok := serviceTypes[t]
	return ok
}

// IsChemical reports whether the procedure applies dye or bleach and
// therefore needs a strand test first.
func (t ServiceType) IsChemical() bool {
	return serviceTypes[t]
}

// ServiceItem is one entry of an appointment's service list.
type ServiceItem struct {
	Type              ServiceType `json:"tipo" validate:"required,servicetype"`
	Description       string      `json:"descricao,omitempty"`
	EstimatedDuration int         `json:"duracao_estimada" validate:"gt=0"`
	Price             *float64    `json:"preco,omitempty"`
}

// Professional is a bookable staff member.
type Professional struct {
	ID          string   `json:"id"`
	Name        string   `json:"nome"`
	ServiceType string   `json:"tipo_servico"`
	Specialties []string `json:"especialidades"`
	Active      bool     `json:"is_active"`
}
