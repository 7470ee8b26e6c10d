package nao

import "math"

// Number is the element constraint for vectors.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Vector2 is a two-dimensional vector, used for the inclination angles.
type Vector2[T Number] struct {
	X T `json:"x"`
	Y T `json:"y"`
}

// Vector3 is a three-dimensional vector, used for the accelerometer and gyroscope.
type Vector3[T Number] struct {
	X T `json:"x"`
	Y T `json:"y"`
	Z T `json:"z"`
}

func (v Vector2[T]) Add(o Vector2[T]) Vector2[T] { return Vector2[T]{v.X + o.X, v.Y + o.Y} }
func (v Vector2[T]) Sub(o Vector2[T]) Vector2[T] { return Vector2[T]{v.X - o.X, v.Y - o.Y} }
func (v Vector2[T]) Mul(o Vector2[T]) Vector2[T] { return Vector2[T]{v.X * o.X, v.Y * o.Y} }
func (v Vector2[T]) Div(o Vector2[T]) Vector2[T] { return Vector2[T]{v.X / o.X, v.Y / o.Y} }
func (v Vector2[T]) Scale(s T) Vector2[T]        { return Vector2[T]{v.X * s, v.Y * s} }
func (v Vector2[T]) Dot(o Vector2[T]) T          { return v.X*o.X + v.Y*o.Y }

// Norm returns the Euclidean length.
func (v Vector2[T]) Norm() float64 { return math.Sqrt(float64(v.Dot(v))) }

func (v Vector3[T]) Add(o Vector3[T]) Vector3[T] { return Vector3[T]{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3[T]) Sub(o Vector3[T]) Vector3[T] { return Vector3[T]{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3[T]) Mul(o Vector3[T]) Vector3[T] { return Vector3[T]{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vector3[T]) Div(o Vector3[T]) Vector3[T] { return Vector3[T]{v.X / o.X, v.Y / o.Y, v.Z / o.Z} }
func (v Vector3[T]) Scale(s T) Vector3[T]        { return Vector3[T]{v.X * s, v.Y * s, v.Z * s} }
func (v Vector3[T]) Dot(o Vector3[T]) T          { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Norm returns the Euclidean length.
func (v Vector3[T]) Norm() float64 { return math.Sqrt(float64(v.Dot(v))) }
