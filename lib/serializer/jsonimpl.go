package serializer

import (
	"encoding/json"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() ISerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the ISerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

func (j jsonSerializerImpl) Deserialize(b []byte, snap *Snapshot) error {
	return json.Unmarshal(b, snap)
}
