package lifecycle

import "NeighborGuard/internal/models"

// EventType 事件类型配置
type EventType struct {
	Value        string          `json:"value"`
	Label        string          `json:"label"`
	LabelEn      string          `json:"labelEn"`
	Icon         string          `json:"icon"`
	Severity     models.Severity `json:"severity"`
	AllowedZones []string        `json:"allowedZones"`
}

// AllowsZone reports whether an event of this type may be filed in the zone
// type; an empty whitelist allows every zone.
func (t EventType) AllowsZone(zoneType string) bool {
	if len(t.AllowedZones) == 0 {
		return true
	}
	for _, z := range t.AllowedZones {
		if z == zoneType {
			return true
		}
	}
	return false
}

var eventTypes = []EventType{
	{Value: "break_in_attempt", Label: "试图入室", LabelEn: "Break-in Attempt", Icon: "🚨", Severity: models.SeverityHigh,
		AllowedZones: []string{"FRONT_DOOR", "SIDE_DOOR", "BACK_DOOR", "GARAGE_DOOR", "BASEMENT", "BUILDING_ENTRANCE", "UNIT_DOOR", "BALCONY"}},
	{Value: "perimeter_damage", Label: "门窗/玻璃破坏", LabelEn: "Perimeter Damage", Icon: "🧱", Severity: models.SeverityHigh,
		AllowedZones: []string{"FRONT_DOOR", "BACK_DOOR", "SIDE_DOOR", "GARAGE_DOOR", "BASEMENT", "BUILDING_ENTRANCE", "UNIT_DOOR", "BALCONY", "BACK_YARD"}},
	{Value: "suspicious_person", Label: "可疑人员", LabelEn: "Suspicious Person", Icon: "⚠️", Severity: models.SeverityMedium,
		AllowedZones: []string{"FRONT_DOOR", "FRONT_YARD", "FRONT_STREET", "SIDE_YARD", "SIDE_DOOR", "SIDE_DRIVEWAY", "BACK_YARD", "BACK_DOOR", "BACK_STREET", "GARAGE_DRIVEWAY", "GARAGE_DOOR", "PARKING_AREA", "BUILDING_ENTRANCE", "SHARED_HALLWAY", "UNIT_DOOR", "BALCONY", "OTHER"}},
	{Value: "suspicious_vehicle", Label: "可疑车辆", LabelEn: "Suspicious Vehicle", Icon: "🚗", Severity: models.SeverityMedium,
		AllowedZones: []string{"FRONT_STREET", "BACK_STREET", "GARAGE_DRIVEWAY", "SIDE_DRIVEWAY", "PARKING_AREA"}},
	{Value: "unusual_noise", Label: "异常声响/人影", LabelEn: "Unusual Noise", Icon: "🔊", Severity: models.SeverityMedium,
		AllowedZones: []string{"FRONT_DOOR", "FRONT_YARD", "FRONT_STREET", "SIDE_YARD", "SIDE_DOOR", "BACK_YARD", "BACK_DOOR", "BACK_STREET", "GARAGE_DOOR", "GARAGE_DRIVEWAY", "BASEMENT", "BUILDING_ENTRANCE", "SHARED_HALLWAY", "UNIT_DOOR", "PARKING_AREA", "BALCONY", "OTHER"}},
	{Value: "package_event", Label: "门口包裹", LabelEn: "Package Event", Icon: "📦", Severity: models.SeverityLow,
		AllowedZones: []string{"FRONT_DOOR", "FRONT_YARD", "BUILDING_ENTRANCE", "UNIT_DOOR", "GARAGE_DOOR", "OTHER"}},
	{Value: "custom", Label: "自定义安全事件", LabelEn: "Custom Event", Icon: "✏️", Severity: models.SeverityLow},
}

// EventTypes returns the ordered event type configuration.
func EventTypes() []EventType {
	return append([]EventType(nil), eventTypes...)
}

func LookupEventType(value string) (EventType, bool) {
	for _, t := range eventTypes {
		if t.Value == value {
			return t, true
		}
	}
	return EventType{}, false
}
