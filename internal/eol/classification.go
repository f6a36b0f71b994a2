package eol

const (
	nullByteConstant           = byte(0x00)
	lineFeedByteConstant       = byte(0x0A)
	carriageReturnByteConstant = byte(0x0D)
	classificationBinaryLabel  = "Binary"
	classificationLFLabel      = "LF"
	classificationCRLFLabel    = "CRLF"
	classificationMixedLabel   = "Mixed"
	classificationUnknownLabel = "Unknown"
)

// Classification enumerates the line-ending conventions a file revision can exhibit.
type Classification int

// Supported classifications. The zero value is Unknown.
const (
	ClassificationUnknown Classification = iota
	ClassificationBinary
	ClassificationLF
	ClassificationCRLF
	ClassificationMixed
)

var classificationLabels = map[Classification]string{
	ClassificationUnknown: classificationUnknownLabel,
	ClassificationBinary:  classificationBinaryLabel,
	ClassificationLF:      classificationLFLabel,
	ClassificationCRLF:    classificationCRLFLabel,
	ClassificationMixed:   classificationMixedLabel,
}

// String returns the display label of the classification.
func (classification Classification) String() string {
	label, known := classificationLabels[classification]
	if !known {
		return classificationUnknownLabel
	}
	return label
}

// IsLineEnding reports whether the classification is a single, unambiguous line-ending style.
func (classification Classification) IsLineEnding() bool {
	return classification == ClassificationLF || classification == ClassificationCRLF
}

// Classify scans content once and reports its line-ending convention.
// A null byte anywhere marks the content as binary regardless of terminators seen.
func Classify(content []byte) Classification {
	lineFeedObserved := false
	carriageReturnLineFeedObserved := false

	for byteIndex, currentByte := range content {
		switch currentByte {
		case nullByteConstant:
			return ClassificationBinary
		case lineFeedByteConstant:
			if byteIndex > 0 && content[byteIndex-1] == carriageReturnByteConstant {
				carriageReturnLineFeedObserved = true
			} else {
				lineFeedObserved = true
			}
		}
	}

	switch {
	case lineFeedObserved && carriageReturnLineFeedObserved:
		return ClassificationMixed
	case carriageReturnLineFeedObserved:
		return ClassificationCRLF
	case lineFeedObserved:
		return ClassificationLF
	default:
		return ClassificationUnknown
	}
}
