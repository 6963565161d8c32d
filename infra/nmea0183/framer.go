package nmea0183

// maxSentence bounds a sentence. The standard allows 82 characters; some
// instruments exceed it.
const maxSentence = 160

type frameState int

const (
	stateIdle frameState = iota
	stateBody
	stateChecksum1
	stateChecksum2
)

// Framer extracts sentences from a byte stream. A '$' or '!' always starts
// a new sentence, so garbage and truncated sentences are dropped.
type Framer struct {
	state frameState
	buf   []byte
}

// Feed consumes b and appends every completed sentence to out.
func (f *Framer) Feed(b []byte, out []string) []string {
	for _, c := range b {
		if s, ok := f.step(c); ok {
			out = append(out, s)
		}
	}
	return out
}

func (f *Framer) step(c byte) (string, bool) {
	if c == '$' || c == '!' {
		f.buf = append(f.buf[:0], c)
		f.state = stateBody
		return "", false
	}
	switch f.state {
	case stateBody:
		switch c {
		case '*':
			f.buf = append(f.buf, c)
			f.state = stateChecksum1
		case '\r', '\n':
			return f.emit()
		default:
			f.buf = append(f.buf, c)
		}
	case stateChecksum1:
		f.buf = append(f.buf, c)
		f.state = stateChecksum2
	case stateChecksum2:
		f.buf = append(f.buf, c)
		return f.emit()
	}
	if len(f.buf) > maxSentence {
		f.reset()
	}
	return "", false
}

func (f *Framer) emit() (string, bool) {
	s := string(f.buf)
	f.reset()
	return s, len(s) > 1
}

func (f *Framer) reset() {
	f.buf = f.buf[:0]
	f.state = stateIdle
}
