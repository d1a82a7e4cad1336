package estimation

// Class enumerates the primitive classes that the estimators know about.
type Class int

// A list of all primitive classes.
const (
	ClassUnknown Class = iota
	ClassRegFile
	ClassFIFO
	ClassCrossbar
	ClassCounter
	ClassComparator
	ClassWire
	ClassBitwise
	ClassShifter
	ClassIntAdder
	ClassIntMultiplier
	ClassIntMAC
	ClassFPAdder
	ClassFPMultiplier
	ClassFPMAC
	ClassSRAM
	ClassDRAM
)

var classNames = map[Class]string{
	ClassRegFile:       "regfile",
	ClassFIFO:          "FIFO",
	ClassCrossbar:      "crossbar",
	ClassCounter:       "counter",
	ClassComparator:    "comparator",
	ClassWire:          "wire",
	ClassBitwise:       "bitwise",
	ClassShifter:       "shifter",
	ClassIntAdder:      "intadder",
	ClassIntMultiplier: "intmultiplier",
	ClassIntMAC:        "intmac",
	ClassFPAdder:       "fpadder",
	ClassFPMultiplier:  "fpmultiplier",
	ClassFPMAC:         "fpmac",
	ClassSRAM:          "SRAM",
	ClassDRAM:          "DRAM",
}

var classByName = func() map[string]Class {
	m := make(map[string]Class, len(classNames))
	for c, n := range classNames {
		m[n] = c
	}

	return m
}()

// ParseClass finds the class by its name in a request. Names are case
// sensitive. Unknown names return ClassUnknown.
func ParseClass(name string) Class {
	c, ok := classByName[name]
	if !ok {
		return ClassUnknown
	}

	return c
}

func (c Class) String() string {
	n, ok := classNames[c]
	if !ok {
		return "unknown"
	}

	return n
}
