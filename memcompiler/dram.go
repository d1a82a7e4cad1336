package memcompiler

// DRAMType defines the category of the DRAM.
type DRAMType int

// A list of all DRAM types. Only some of them have an energy model.
const (
	DRAMUnknown DRAMType = iota
	DDR3
	DDR4
	GDDR5
	GDDR5X
	GDDR6
	LPDDR
	LPDDR3
	LPDDR4
	HBM
	HBM2
)

var dramTypeNames = map[DRAMType]string{
	DDR3:   "DDR3",
	DDR4:   "DDR4",
	GDDR5:  "GDDR5",
	GDDR5X: "GDDR5X",
	GDDR6:  "GDDR6",
	LPDDR:  "LPDDR",
	LPDDR3: "LPDDR3",
	LPDDR4: "LPDDR4",
	HBM:    "HBM",
	HBM2:   "HBM2",
}

// Energy per bit of an access, in pJ. LPDDR4 is from public data, LPDDR and
// DDR3 from Malladi et al. (ISCA'12), GDDR5 and HBM2 from Chatterjee et al.
// (MICRO'17).
var dramEnergyPerBit = map[DRAMType]float64{
	LPDDR4: 8,
	LPDDR:  40,
	DDR3:   70,
	GDDR5:  14,
	HBM2:   3.9,
}

// ParseDRAMType finds the DRAM type by name.
func ParseDRAMType(name string) DRAMType {
	for t, n := range dramTypeNames {
		if n == name {
			return t
		}
	}

	return DRAMUnknown
}

func (t DRAMType) String() string {
	n, ok := dramTypeNames[t]
	if !ok {
		return "unknown"
	}

	return n
}

// EnergyPerBit returns the access energy of one bit, in pJ.
func (t DRAMType) EnergyPerBit() (float64, bool) {
	e, ok := dramEnergyPerBit[t]
	return e, ok
}
