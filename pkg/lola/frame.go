package lola

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

// StateFrameSize is the size of every state frame LoLA writes to the socket.
const StateFrameSize = 896

// ControlFrame is the wire layout of a control message: a MessagePack map
// keyed by the field names below, in this order.
type ControlFrame struct {
	Position  [nao.JointCount]float32       `msgpack:"Position"`
	Stiffness [nao.JointCount]float32       `msgpack:"Stiffness"`
	REar      [nao.EarLEDCount]float32      `msgpack:"REar"`
	LEar      [nao.EarLEDCount]float32      `msgpack:"LEar"`
	Chest     [3]float32                    `msgpack:"Chest"`
	LEye      [3 * nao.EyeLEDCount]float32  `msgpack:"LEye"`
	REye      [3 * nao.EyeLEDCount]float32  `msgpack:"REye"`
	LFoot     [3]float32                    `msgpack:"LFoot"`
	RFoot     [3]float32                    `msgpack:"RFoot"`
	Skull     [nao.SkullLEDCount]float32    `msgpack:"Skull"`
	Sonar     [2]bool                       `msgpack:"Sonar"`
}

// StateFrame is the wire layout of a state frame.
type StateFrame struct {
	Stiffness     [nao.JointCount]float32 `msgpack:"Stiffness"`
	Position      [nao.JointCount]float32 `msgpack:"Position"`
	Temperature   [nao.JointCount]float32 `msgpack:"Temperature"`
	Current       [nao.JointCount]float32 `msgpack:"Current"`
	Battery       [4]float32              `msgpack:"Battery"`
	Accelerometer [3]float32              `msgpack:"Accelerometer"`
	Gyroscope     [3]float32              `msgpack:"Gyroscope"`
	Angles        [2]float32              `msgpack:"Angles"`
	Sonar         [2]float32              `msgpack:"Sonar"`
	FSR           [8]float32              `msgpack:"FSR"`
	Touch         [14]float32             `msgpack:"Touch"`
	Status        [nao.JointCount]int32   `msgpack:"Status"`
	RobotConfig   [4]string               `msgpack:"RobotConfig"`
}

// rawStateFrame decodes into slices so that element counts can be checked;
// decoding straight into arrays would silently accept short fields.
type rawStateFrame struct {
	Stiffness     []float32 `msgpack:"Stiffness"`
	Position      []float32 `msgpack:"Position"`
	Temperature   []float32 `msgpack:"Temperature"`
	Current       []float32 `msgpack:"Current"`
	Battery       []float32 `msgpack:"Battery"`
	Accelerometer []float32 `msgpack:"Accelerometer"`
	Gyroscope     []float32 `msgpack:"Gyroscope"`
	Angles        []float32 `msgpack:"Angles"`
	Sonar         []float32 `msgpack:"Sonar"`
	FSR           []float32 `msgpack:"FSR"`
	Touch         []float32 `msgpack:"Touch"`
	Status        []int32   `msgpack:"Status"`
	RobotConfig   []string  `msgpack:"RobotConfig"`
}

// NewControlFrame flattens a control message through the wire codec.
func NewControlFrame(msg nao.ControlMessage) ControlFrame {
	return ControlFrame{
		Position:  EncodeJoints(msg.Position),
		Stiffness: EncodeJoints(msg.Stiffness),
		REar:      EncodeRightEar(msg.RightEar),
		LEar:      EncodeLeftEar(msg.LeftEar),
		Chest:     EncodeRgb(msg.Chest),
		LEye:      EncodeLeftEye(msg.LeftEye),
		REye:      EncodeRightEye(msg.RightEye),
		LFoot:     EncodeRgb(msg.LeftFoot),
		RFoot:     EncodeRgb(msg.RightFoot),
		Skull:     EncodeSkull(msg.Skull),
		Sonar:     EncodeSonarEnabled(msg.Sonar),
	}
}

// Message rebuilds the structured control message.
func (f ControlFrame) Message() nao.ControlMessage {
	return nao.ControlMessage{
		Position:  DecodeJoints(f.Position),
		Stiffness: DecodeJoints(f.Stiffness),
		Sonar:     DecodeSonarEnabled(f.Sonar),
		LeftEar:   DecodeLeftEar(f.LEar),
		RightEar:  DecodeRightEar(f.REar),
		Chest:     DecodeRgb(f.Chest),
		LeftEye:   DecodeLeftEye(f.LEye),
		RightEye:  DecodeRightEye(f.REye),
		LeftFoot:  DecodeRgb(f.LFoot),
		RightFoot: DecodeRgb(f.RFoot),
		Skull:     DecodeSkull(f.Skull),
	}
}

// NewStateFrame flattens a state and hardware identity into a state frame.
func NewStateFrame(s nao.State, hw nao.HardwareInfo) StateFrame {
	return StateFrame{
		Stiffness:     EncodeJoints(s.Stiffness),
		Position:      EncodeJoints(s.Position),
		Temperature:   EncodeJoints(s.Temperature),
		Current:       EncodeJoints(s.Current),
		Battery:       EncodeBattery(s.Battery),
		Accelerometer: EncodeVector3(s.Accelerometer),
		Gyroscope:     EncodeVector3(s.Gyroscope),
		Angles:        EncodeVector2(s.Angles),
		Sonar:         EncodeSonarValues(s.Sonar),
		FSR:           EncodeFSR(s.ForceSensitiveResistors),
		Touch:         EncodeTouch(s.Touch),
		Status:        EncodeJoints(s.Status),
		RobotConfig:   [4]string{hw.BodyID, hw.BodyVersion, hw.HeadID, hw.HeadVersion},
	}
}

// State rebuilds the structured sensor state.
func (f StateFrame) State() nao.State {
	return nao.State{
		Position:                DecodeJoints(f.Position),
		Stiffness:               DecodeJoints(f.Stiffness),
		Temperature:             DecodeJoints(f.Temperature),
		Current:                 DecodeJoints(f.Current),
		Status:                  DecodeJoints(f.Status),
		Battery:                 DecodeBattery(f.Battery),
		ForceSensitiveResistors: DecodeFSR(f.FSR),
		Touch:                   DecodeTouch(f.Touch),
		Accelerometer:           DecodeVector3(f.Accelerometer),
		Gyroscope:               DecodeVector3(f.Gyroscope),
		Angles:                  DecodeVector2(f.Angles),
		Sonar:                   DecodeSonarValues(f.Sonar),
	}
}

// HardwareInfo extracts the robot identity from RobotConfig.
func (f StateFrame) HardwareInfo() nao.HardwareInfo {
	return nao.HardwareInfo{
		BodyID:      f.RobotConfig[0],
		BodyVersion: f.RobotConfig[1],
		HeadID:      f.RobotConfig[2],
		HeadVersion: f.RobotConfig[3],
	}
}

// EncodeControl serializes msg to a MessagePack map.
func EncodeControl(msg nao.ControlMessage) ([]byte, error) {
	data, err := msgpack.Marshal(NewControlFrame(msg))
	if err != nil {
		return nil, newError("encode control", KindEncode, "", err)
	}
	return data, nil
}

// DecodeControl parses a serialized control message.
func DecodeControl(data []byte) (nao.ControlMessage, error) {
	var f ControlFrame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nao.ControlMessage{}, newError("decode control", KindDecode, "unexpected map shape", err)
	}
	return f.Message(), nil
}

// WriteControl encodes msg and writes it to w with a single Write call.
func WriteControl(w io.Writer, msg nao.ControlMessage) error {
	data, err := EncodeControl(msg)
	if err != nil {
		return err
	}
	n, err := w.Write(data)
	if err != nil {
		return newError("write control", KindTransport, "", err)
	}
	if n != len(data) {
		return newError("write control", KindTransport, fmt.Sprintf("short write: %d of %d bytes", n, len(data)), io.ErrShortWrite)
	}
	return nil
}

// EncodeStateFrame serializes f and pads it with zeros to StateFrameSize.
// This is what the control daemon does; it is used to fake one.
func EncodeStateFrame(f StateFrame) ([StateFrameSize]byte, error) {
	var out [StateFrameSize]byte

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(&f); err != nil {
		return out, newError("encode state", KindEncode, "", err)
	}
	if buf.Len() > StateFrameSize {
		return out, newError("encode state", KindEncode, fmt.Sprintf("frame is %d bytes, limit %d", buf.Len(), StateFrameSize), nil)
	}
	copy(out[:], buf.Bytes())
	return out, nil
}

// ReadStateFrame reads exactly StateFrameSize bytes from r and decodes them.
// A short read is reported as KindFrameTruncated and is not retried.
func ReadStateFrame(r io.Reader) (StateFrame, error) {
	var buf [StateFrameSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		detail := fmt.Sprintf("got %d of %d bytes", n, StateFrameSize)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return StateFrame{}, newError("read state", KindFrameTruncated, detail, err)
		}
		return StateFrame{}, newError("read state", KindTransport, detail, err)
	}
	return DecodeStateFrame(&buf)
}

// DecodeStateFrame parses a full state frame. Trailing padding after the
// MessagePack map is ignored.
func DecodeStateFrame(buf *[StateFrameSize]byte) (StateFrame, error) {
	var raw rawStateFrame
	if err := msgpack.NewDecoder(bytes.NewReader(buf[:])).Decode(&raw); err != nil {
		return StateFrame{}, newError("decode state", KindDecode, "unexpected map shape", err)
	}

	var f StateFrame
	err := errors.Join(
		copyField("Stiffness", f.Stiffness[:], raw.Stiffness),
		copyField("Position", f.Position[:], raw.Position),
		copyField("Temperature", f.Temperature[:], raw.Temperature),
		copyField("Current", f.Current[:], raw.Current),
		copyField("Battery", f.Battery[:], raw.Battery),
		copyField("Accelerometer", f.Accelerometer[:], raw.Accelerometer),
		copyField("Gyroscope", f.Gyroscope[:], raw.Gyroscope),
		copyField("Angles", f.Angles[:], raw.Angles),
		copyField("Sonar", f.Sonar[:], raw.Sonar),
		copyField("FSR", f.FSR[:], raw.FSR),
		copyField("Touch", f.Touch[:], raw.Touch),
		copyField("Status", f.Status[:], raw.Status),
		copyField("RobotConfig", f.RobotConfig[:], raw.RobotConfig),
	)
	if err != nil {
		return StateFrame{}, newError("decode state", KindDecode, "wrong field length", err)
	}
	return f, nil
}

func copyField[T any](name string, dst, src []T) error {
	if len(src) != len(dst) {
		return fmt.Errorf("field %q: want %d elements, got %d", name, len(dst), len(src))
	}
	copy(dst, src)
	return nil
}
