package equipment

// Family identifies an equipment family.
type Family string

const (
	FamilyWaterHeater Family = "water_heater"
	FamilySoftener    Family = "softener"
)

// Variant identifies the fuel or construction type within a family.
type Variant string

const (
	VariantGasTank          Variant = "gas_tank"
	VariantElectricTank     Variant = "electric_tank"
	VariantPropaneTank      Variant = "propane_tank"
	VariantTanklessGas      Variant = "tankless_gas"
	VariantTanklessElectric Variant = "tankless_electric"
	VariantHybrid           Variant = "hybrid"
	VariantIonExchange      Variant = "ion_exchange"
)

var familyVariants = map[Family][]Variant{
	FamilyWaterHeater: {
		VariantGasTank,
		VariantElectricTank,
		VariantPropaneTank,
		VariantTanklessGas,
		VariantTanklessElectric,
		VariantHybrid,
	},
	FamilySoftener: {
		VariantIonExchange,
	},
}

var variantLabels = map[Variant]string{
	VariantGasTank:          "gas tank water heater",
	VariantElectricTank:     "electric tank water heater",
	VariantPropaneTank:      "propane tank water heater",
	VariantTanklessGas:      "gas tankless water heater",
	VariantTanklessElectric: "electric tankless water heater",
	VariantHybrid:           "hybrid heat pump water heater",
	VariantIonExchange:      "ion-exchange water softener",
}

// Label returns a readable name for the variant.
func (v Variant) Label() string {
	if label, ok := variantLabels[v]; ok {
		return label
	}
	return string(v)
}

// IsTankless reports whether the variant heats on demand without a storage tank.
func (v Variant) IsTankless() bool {
	return v == VariantTanklessGas || v == VariantTanklessElectric
}

// HasAnode reports whether the variant relies on a sacrificial anode.
func (v Variant) HasAnode() bool {
	switch v {
	case VariantGasTank, VariantElectricTank, VariantPropaneTank, VariantHybrid:
		return true
	default:
		return false
	}
}

// Combustion reports whether the variant fires a burner.
func (v Variant) Combustion() bool {
	return v == VariantGasTank || v == VariantPropaneTank || v == VariantTanklessGas
}

// Usage describes household hot/soft water intensity.
type Usage string

const (
	UsageLight  Usage = "light"
	UsageNormal Usage = "normal"
	UsageHeavy  Usage = "heavy"
)

// WaterSource is the supply the house draws from.
type WaterSource string

const (
	SourceCity WaterSource = "city"
	SourceWell WaterSource = "well"
)

// PRVStatus describes the pressure-reducing valve.
type PRVStatus string

const (
	PRVNone       PRVStatus = "none"
	PRVFunctional PRVStatus = "functional"
	PRVFailed     PRVStatus = "failed"
)

// ExpansionTankStatus describes the thermal expansion tank.
type ExpansionTankStatus string

const (
	ExpansionNone        ExpansionTankStatus = "none"
	ExpansionFunctional  ExpansionTankStatus = "functional"
	ExpansionWaterlogged ExpansionTankStatus = "waterlogged"
)

// LeakSource narrows down where an active leak originates.
type LeakSource string

const (
	LeakNone    LeakSource = ""
	LeakTank    LeakSource = "tank"
	LeakFitting LeakSource = "fitting"
	LeakValve   LeakSource = "valve"
)

// Condition is an inspector's rating of a serviceable component.
type Condition string

const (
	ConditionGood     Condition = "good"
	ConditionDegraded Condition = "degraded"
	ConditionFailed   Condition = "failed"
)

// FilterCondition is an inspector's rating of an inlet or air filter.
type FilterCondition string

const (
	FilterClean   FilterCondition = "clean"
	FilterDirty   FilterCondition = "dirty"
	FilterClogged FilterCondition = "clogged"
)

// Environment captures readings taken at the house.
type Environment struct {
	HousePSI    float64     `yaml:"house_psi" json:"house_psi"`
	HardnessGPG *float64    `yaml:"hardness_gpg,omitempty" json:"hardness_gpg,omitempty"`
	Occupants   float64     `yaml:"occupants" json:"occupants"`
	Usage       Usage       `yaml:"usage" json:"usage"`
	WaterSource WaterSource `yaml:"water_source" json:"water_source"`
	WellIron    bool        `yaml:"well_iron" json:"well_iron"`
}

// Accessories lists installed supporting infrastructure.
type Accessories struct {
	PRV               PRVStatus           `yaml:"prv" json:"prv"`
	ExpansionTank     ExpansionTankStatus `yaml:"expansion_tank" json:"expansion_tank"`
	ClosedLoop        bool                `yaml:"closed_loop" json:"closed_loop"`
	RecircPump        bool                `yaml:"recirc_pump" json:"recirc_pump"`
	CarbonFilter      bool                `yaml:"carbon_filter" json:"carbon_filter"`
	IsolationValves   bool                `yaml:"isolation_valves" json:"isolation_valves"`
	DrainPan          bool                `yaml:"drain_pan" json:"drain_pan"`
	SoftenerInstalled bool                `yaml:"softener_installed" json:"softener_installed"`
}

// History records maintenance intervals. Nil means never serviced.
type History struct {
	YearsSinceFlush   *float64 `yaml:"years_since_flush,omitempty" json:"years_since_flush,omitempty"`
	YearsSinceAnode   *float64 `yaml:"years_since_anode,omitempty" json:"years_since_anode,omitempty"`
	YearsSinceDescale *float64 `yaml:"years_since_descale,omitempty" json:"years_since_descale,omitempty"`
}

// Observations are direct findings from the inspection.
type Observations struct {
	VisibleRust      bool            `yaml:"visible_rust" json:"visible_rust"`
	IsLeaking        bool            `yaml:"is_leaking" json:"is_leaking"`
	LeakSource       LeakSource      `yaml:"leak_source,omitempty" json:"leak_source,omitempty"`
	ErrorCodeCount   int             `yaml:"error_code_count" json:"error_code_count"`
	FilterCondition  FilterCondition `yaml:"filter_condition" json:"filter_condition"`
	IgniterCondition Condition       `yaml:"igniter_condition" json:"igniter_condition"`
	ElementCondition Condition       `yaml:"element_condition" json:"element_condition"`
}

// Profile is one inspection record for a single piece of equipment.
type Profile struct {
	Family         Family       `yaml:"family" json:"family"`
	Variant        Variant      `yaml:"variant" json:"variant"`
	AgeYears       float64      `yaml:"age_years" json:"age_years"`
	WarrantyYears  float64      `yaml:"warranty_years" json:"warranty_years"`
	TankGallons    float64      `yaml:"tank_gallons,omitempty" json:"tank_gallons,omitempty"`
	TempSettingF   float64      `yaml:"temp_setting_f,omitempty" json:"temp_setting_f,omitempty"`
	CapacityGrains float64      `yaml:"capacity_grains,omitempty" json:"capacity_grains,omitempty"`
	Environment    Environment  `yaml:"environment" json:"environment"`
	Accessories    Accessories  `yaml:"accessories" json:"accessories"`
	History        History      `yaml:"history" json:"history"`
	Observations   Observations `yaml:"observations" json:"observations"`
}
