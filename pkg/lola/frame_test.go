package lola

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

var testHardware = nao.HardwareInfo{
	BodyID:      "P0000074A04S",
	BodyVersion: "6.0.0",
	HeadID:      "P0000073A07S",
	HeadVersion: "6.0.0",
}

// knownFrame fills every field with a distinct, recognizable value.
func knownFrame() StateFrame {
	var f StateFrame
	for i := range f.Position {
		f.Position[i] = float32(i) / 10
		f.Stiffness[i] = 1
		f.Temperature[i] = 30 + float32(i)
		f.Current[i] = float32(i) / 100
		f.Status[i] = int32(i % 4)
	}
	f.Battery = [4]float32{0.87, -0.5, 1, 28}
	f.Accelerometer = [3]float32{0.1, -0.2, -9.81}
	f.Gyroscope = [3]float32{0.01, 0.02, 0.03}
	f.Angles = [2]float32{0.05, -0.04}
	f.Sonar = [2]float32{0.6, 2.5}
	f.FSR = [8]float32{0, 1, 0.32, 0.76, 0.54, 1, 0.32, 0.95}
	for i := range f.Touch {
		f.Touch[i] = float32(i%2) * 1
	}
	f.Touch[1] = 0.5
	f.RobotConfig = [4]string{testHardware.BodyID, testHardware.BodyVersion, testHardware.HeadID, testHardware.HeadVersion}
	return f
}

func encodeKnown(t *testing.T) [StateFrameSize]byte {
	t.Helper()
	buf, err := EncodeStateFrame(knownFrame())
	require.NoError(t, err)
	return buf
}

func TestControlFrame_ChestScenario(t *testing.T) {
	msg := nao.BuildControl().Chest(nao.RgbF32{Red: 1}).Build()

	data, err := EncodeControl(msg)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &fields))

	keys := []string{"Position", "Stiffness", "REar", "LEar", "Chest", "LEye", "REye", "LFoot", "RFoot", "Skull", "Sonar"}
	assert.Len(t, fields, len(keys))
	for _, k := range keys {
		assert.Contains(t, fields, k)
	}

	assert.Equal(t, []any{float32(1), float32(0), float32(0)}, fields["Chest"])
	assert.Equal(t, []any{true, true}, fields["Sonar"])

	position := fields["Position"].([]any)
	require.Len(t, position, nao.JointCount)
	for _, v := range position {
		assert.Equal(t, float32(-1), v)
	}
	for _, k := range []string{"Stiffness", "REar", "LEar", "LEye", "REye", "LFoot", "RFoot", "Skull"} {
		for _, v := range fields[k].([]any) {
			assert.Equal(t, float32(0), v, k)
		}
	}
}

func TestControlFrame_RoundTrip(t *testing.T) {
	msg := nao.BuildControl().
		Stiffness(nao.FillJoints[float32](0.8)).
		LeftEar(nao.LeftEar{Deg36: 0.3}).
		RightEye(nao.FillRightEye(nao.Cyan)).
		LeftEye(nao.LeftEye{Deg315: nao.Orange}).
		Skull(nao.Skull{RightMiddle0: 0.9}).
		Sonar(nao.SonarEnabled{Left: true}).
		Build()

	data, err := EncodeControl(msg)
	require.NoError(t, err)

	got, err := DecodeControl(data)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestWriteControl_SingleWrite(t *testing.T) {
	w := &countingWriter{}
	require.NoError(t, WriteControl(w, nao.NewControlMessage()))
	assert.Equal(t, 1, w.writes)

	data, _ := EncodeControl(nao.NewControlMessage())
	assert.Equal(t, data, w.Bytes())
}

func TestWriteControl_ShortWrite(t *testing.T) {
	err := WriteControl(&countingWriter{limit: 10}, nao.NewControlMessage())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestStateFrame_Decode(t *testing.T) {
	buf := encodeKnown(t)

	f, err := DecodeStateFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, knownFrame(), f)

	s := f.State()
	assert.Equal(t, nao.Battery{Charge: 0.87, Current: -0.5, Status: 1, Temperature: 28}, s.Battery)
	assert.Equal(t, nao.ForceSensitiveResistorFoot{FrontLeft: 0, FrontRight: 1, RearLeft: 0.32, RearRight: 0.76}, s.ForceSensitiveResistors.LeftFoot)
	assert.Equal(t, nao.ForceSensitiveResistorFoot{FrontLeft: 0.54, FrontRight: 1, RearLeft: 0.32, RearRight: 0.95}, s.ForceSensitiveResistors.RightFoot)
	assert.Equal(t, float32(0), s.Touch.ChestBoard)
	assert.Equal(t, float32(0.5), s.Touch.HeadFront)
	assert.Equal(t, float32(1), s.Touch.RightHandRight)
	assert.Equal(t, float32(2.4), s.Position.RightHand)
	assert.Equal(t, int32(0), s.Status.RightHand)
	assert.Equal(t, float32(-9.81), s.Accelerometer.Z)
	assert.Equal(t, float32(-0.04), s.Angles.Y)
	assert.Equal(t, nao.SonarValues{Left: 0.6, Right: 2.5}, s.Sonar)
	assert.Equal(t, testHardware, f.HardwareInfo())
}

func TestStateFrame_StateRoundTrip(t *testing.T) {
	f := knownFrame()
	assert.Equal(t, f, NewStateFrame(f.State(), f.HardwareInfo()))
}

func TestReadStateFrame_ConsumesExactlyOneFrame(t *testing.T) {
	first := knownFrame()
	second := knownFrame()
	second.Battery[0] = 0.12
	second.Position[0] = -0.5

	var stream bytes.Buffer
	for _, f := range []StateFrame{first, second} {
		buf, err := EncodeStateFrame(f)
		require.NoError(t, err)
		stream.Write(buf[:])
	}

	got, err := ReadStateFrame(&stream)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.Equal(t, StateFrameSize, stream.Len())

	got, err = ReadStateFrame(&stream)
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Zero(t, stream.Len())
}

func TestReadStateFrame_Truncated(t *testing.T) {
	buf := encodeKnown(t)

	for _, n := range []int{0, 1, 500, StateFrameSize - 1} {
		_, err := ReadStateFrame(bytes.NewReader(buf[:n]))
		require.Error(t, err, "n=%d", n)
		assert.ErrorIs(t, err, ErrFrameTruncated, "n=%d", n)
		assert.False(t, errors.Is(err, ErrDecode), "n=%d", n)
		assert.Equal(t, KindFrameTruncated, KindOf(err))
	}
}

func TestReadStateFrame_TransportError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	_, err := ReadStateFrame(failingReader{err: cause})

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
}

func TestDecodeStateFrame_Garbage(t *testing.T) {
	var buf [StateFrameSize]byte
	_, err := DecodeStateFrame(&buf)
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrFrameTruncated)
}

func TestDecodeStateFrame_WrongFieldLength(t *testing.T) {
	raw := rawStateFrame{
		Stiffness:     make([]float32, 25),
		Position:      make([]float32, 24),
		Temperature:   make([]float32, 25),
		Current:       make([]float32, 25),
		Battery:       make([]float32, 4),
		Accelerometer: make([]float32, 3),
		Gyroscope:     make([]float32, 3),
		Angles:        make([]float32, 2),
		Sonar:         make([]float32, 2),
		FSR:           make([]float32, 8),
		Touch:         make([]float32, 14),
		Status:        make([]int32, 25),
		RobotConfig:   []string{"a", "b", "c"},
	}
	var enc bytes.Buffer
	e := msgpack.NewEncoder(&enc)
	e.UseCompactInts(true)
	require.NoError(t, e.Encode(&raw))
	require.LessOrEqual(t, enc.Len(), StateFrameSize, "test frame must fit without truncation")

	var buf [StateFrameSize]byte
	copy(buf[:], enc.Bytes())

	_, err := DecodeStateFrame(&buf)
	require.ErrorIs(t, err, ErrDecode)
	assert.NotContains(t, err.Error(), "unexpected map shape")
	assert.Contains(t, err.Error(), `field "Position": want 25 elements, got 24`)
	assert.Contains(t, err.Error(), `field "RobotConfig": want 4 elements, got 3`)
}

func TestEncodeStateFrame_TooLarge(t *testing.T) {
	f := knownFrame()
	f.RobotConfig[0] = string(bytes.Repeat([]byte("x"), StateFrameSize))

	_, err := EncodeStateFrame(f)
	assert.ErrorIs(t, err, ErrEncode)
}

type countingWriter struct {
	bytes.Buffer
	writes int
	limit  int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.limit > 0 && len(p) > w.limit {
		return w.Buffer.Write(p[:w.limit])
	}
	return w.Buffer.Write(p)
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
