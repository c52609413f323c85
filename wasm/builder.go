package wasm

import "github.com/sirupsen/logrus"

// Section ids, per https://webassembly.github.io/spec/core/binary/modules.html#sections
const (
	sectionCustom byte = 0
	sectionType   byte = 1
	sectionImport byte = 2
	sectionFunc   byte = 3
	sectionTable  byte = 4
	sectionMemory byte = 5
	sectionGlobal byte = 6
	sectionExport byte = 7
	sectionStart  byte = 8
	sectionElem   byte = 9
	sectionCode   byte = 10
	sectionData   byte = 11
)

// sectionOrder is the canonical, strictly increasing sequence non-custom
// sections must appear in (spec §4.C). Custom sections (id 0) are handled
// separately by the caller and never touch this state machine.
var sectionOrder = []byte{
	sectionType, sectionImport, sectionFunc, sectionTable, sectionMemory,
	sectionGlobal, sectionExport, sectionStart, sectionElem, sectionCode,
	sectionData,
}

// builder enforces the section-order state machine while RawModule's
// fields are populated in place by the per-section decoders. A missing
// section is permitted (it simply never fires and the corresponding
// RawModule field stays nil/empty); a section repeated or out of order
// fails with InvalidSectionOrder.
type builder struct {
	module *RawModule
	log    logrus.FieldLogger
	cursor int // index into sectionOrder of the next section id that may appear
}

func newBuilder(m *RawModule, log logrus.FieldLogger) *builder {
	return &builder{module: m, log: log, cursor: 0}
}

// advanceTo walks the expected-section cursor forward until it reaches id,
// skipping over any permitted-but-missing sections on the way. It fails if
// id is behind the cursor (already passed, or repeated) or isn't a known
// section id at all.
func (b *builder) advanceTo(id byte) error {
	for b.cursor < len(sectionOrder) {
		if sectionOrder[b.cursor] == id {
			b.cursor++
			return nil
		}
		b.cursor++
	}
	return badOrder(id)
}
