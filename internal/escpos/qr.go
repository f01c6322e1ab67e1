package escpos

import (
	"fmt"
	"strings"
)

// QRLevel is a QR error correction level
type QRLevel byte

const (
	QRLevelL QRLevel = iota
	QRLevelM
	QRLevelQ
	QRLevelH
)

func (l QRLevel) String() string {
	return [...]string{"L", "M", "Q", "H"}[l&3]
}

// ParseQRLevel accepts L, M, Q or H. Empty means M.
func ParseQRLevel(s string) (QRLevel, error) {
	switch strings.ToUpper(s) {
	case "L":
		return QRLevelL, nil
	case "", "M":
		return QRLevelM, nil
	case "Q":
		return QRLevelQ, nil
	case "H":
		return QRLevelH, nil
	}
	return QRLevelM, fmt.Errorf("invalid error correction '%s' (must be L, M, Q or H)", s)
}

// QROptions controls the printed symbol. Zero values select defaults.
type QROptions struct {
	CellSize   int // module size in dots, 1-16
	Correction QRLevel
	Model      int // 1 or 2
}

// Default QR parameters
const (
	DefaultQRCellSize = 3
	DefaultQRModel    = 2
)

// qrByteCapacity holds model 2 byte-mode capacities per version (index 0 is
// version 1) for levels L, M, Q and H.
var qrByteCapacity = [40][4]int{
	{17, 14, 11, 7}, {32, 26, 20, 14}, {53, 42, 32, 24}, {78, 62, 46, 34},
	{106, 84, 60, 44}, {134, 106, 74, 58}, {154, 122, 86, 64}, {192, 152, 108, 84},
	{230, 180, 130, 98}, {271, 213, 151, 119}, {321, 251, 177, 137}, {367, 287, 203, 155},
	{425, 331, 241, 177}, {458, 362, 258, 194}, {520, 412, 292, 220}, {586, 450, 322, 250},
	{644, 504, 364, 280}, {718, 560, 394, 310}, {792, 624, 442, 338}, {858, 666, 482, 382},
	{929, 711, 509, 403}, {1003, 779, 565, 439}, {1091, 857, 611, 461}, {1171, 911, 661, 511},
	{1273, 997, 715, 535}, {1367, 1059, 751, 593}, {1465, 1125, 805, 625}, {1528, 1190, 868, 658},
	{1628, 1264, 908, 698}, {1732, 1370, 982, 742}, {1840, 1452, 1030, 790}, {1952, 1538, 1112, 842},
	{2068, 1628, 1168, 898}, {2188, 1722, 1228, 958}, {2303, 1809, 1283, 983}, {2431, 1911, 1351, 1051},
	{2563, 1989, 1423, 1093}, {2699, 2099, 1499, 1139}, {2809, 2213, 1579, 1219}, {2953, 2331, 1663, 1273},
}

// model 1 symbols stop at version 14; limits use the model 2 version 14
// row, which never exceeds what a 73x73 model 1 symbol holds
const qrModel1MaxVersion = 14

// QRCapacity returns the largest byte payload for a model and level
func QRCapacity(model int, level QRLevel) int {
	if level > QRLevelH {
		return 0
	}
	switch model {
	case 1:
		return qrByteCapacity[qrModel1MaxVersion-1][level]
	case 2:
		return qrByteCapacity[len(qrByteCapacity)-1][level]
	}
	return 0
}

// QRMinVersion returns the smallest model 2 version holding n bytes
func QRMinVersion(n int, level QRLevel) (int, bool) {
	if level > QRLevelH {
		return 0, false
	}
	for v, row := range qrByteCapacity {
		if n <= row[level] {
			return v + 1, true
		}
	}
	return 0, false
}

func (o QROptions) withDefaults() QROptions {
	if o.CellSize == 0 {
		o.CellSize = DefaultQRCellSize
	}
	if o.Model == 0 {
		o.Model = DefaultQRModel
	}
	return o
}

// EncodeQR appends the GS ( k command group: model, cell size, error
// correction, store data and print.
func (s *Session) EncodeQR(payload string, opts QROptions) error {
	opts = opts.withDefaults()
	if err := validateQR(payload, opts); err != nil {
		return err
	}

	model := byte(48 + opts.Model) // 49 model 1, 50 model 2
	s.buf.Append(GS, '(', 'k', 4, 0, 49, 65, model, 0)
	s.buf.Append(GS, '(', 'k', 3, 0, 49, 67, byte(opts.CellSize))
	s.buf.Append(GS, '(', 'k', 3, 0, 49, 69, byte(48+opts.Correction))

	s.buf.Append(GS, '(', 'k')
	s.buf.AppendBytes(lowHigh(len(payload)+3, 2))
	s.buf.Append(49, 80, 48)
	s.buf.AppendBytes([]byte(payload))

	s.buf.AppendBytes(cmdQRPrint)
	return nil
}

func validateQR(payload string, opts QROptions) error {
	if opts.Model != 1 && opts.Model != 2 {
		return &PayloadError{Symbology: "QR", Reason: fmt.Sprintf("model %d is not 1 or 2", opts.Model)}
	}
	if opts.CellSize < 1 || opts.CellSize > 16 {
		return &PayloadError{Symbology: "QR", Reason: fmt.Sprintf("cell size %d outside 1-16", opts.CellSize)}
	}
	if opts.Correction > QRLevelH {
		return &PayloadError{Symbology: "QR", Reason: fmt.Sprintf("unknown correction level %d", opts.Correction)}
	}
	if len(payload) == 0 {
		return &PayloadError{Symbology: "QR", Reason: "empty payload"}
	}
	limit := QRCapacity(opts.Model, opts.Correction)
	if len(payload) > limit {
		return &PayloadError{
			Symbology: fmt.Sprintf("QR model %d/%s", opts.Model, opts.Correction),
			Length:    len(payload),
			Limit:     limit,
			Reason:    "exceeds symbol capacity",
		}
	}
	return nil
}
