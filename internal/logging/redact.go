package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// credentialKeys are field names whose values never reach the sink.
var credentialKeys = map[string]bool{
	"api_key":       true,
	"authorization": true,
	"password":      true,
	"token":         true,
}

// bearerPattern matches tokens echoed back in TEI error bodies.
var bearerPattern = regexp.MustCompile(`(?i)bearer\s+\S+`)

// redactingEncoder masks credentials in fields added with With (through
// AddString) and in per-call fields (through EncodeEntry).
type redactingEncoder struct {
	zapcore.Encoder
}

func (e redactingEncoder) Clone() zapcore.Encoder {
	return redactingEncoder{e.Encoder.Clone()}
}

func (e redactingEncoder) AddString(key, val string) {
	if credentialKeys[strings.ToLower(key)] {
		val = redacted
	}
	e.Encoder.AddString(key, scrub(val))
}

func (e redactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = redactField(f)
	}
	return e.Encoder.EncodeEntry(ent, out)
}

func redactField(f zapcore.Field) zapcore.Field {
	if credentialKeys[strings.ToLower(f.Key)] {
		return zap.String(f.Key, redacted)
	}
	switch f.Type {
	case zapcore.StringType:
		if bearerPattern.MatchString(f.String) {
			return zap.String(f.Key, scrub(f.String))
		}
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok && bearerPattern.MatchString(err.Error()) {
			return zap.String(f.Key, scrub(err.Error()))
		}
	}
	return f
}

func scrub(s string) string {
	return bearerPattern.ReplaceAllString(s, "Bearer "+redacted)
}
