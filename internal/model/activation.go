package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sigmoid is the logistic function. Large negative z overflows math.Exp to
// +Inf, which yields 0; no clipping is applied.
func Sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// SigmoidPrime is the derivative of Sigmoid.
func SigmoidPrime(z float64) float64 {
	s := Sigmoid(z)
	return s * (1 - s)
}

// sigmoidVec returns Sigmoid applied to every entry of z.
func sigmoidVec(z *mat.VecDense) *mat.VecDense {
	return mapVec(z, Sigmoid)
}

func sigmoidPrimeVec(z *mat.VecDense) *mat.VecDense {
	return mapVec(z, SigmoidPrime)
}

func mapVec(z *mat.VecDense, f func(float64) float64) *mat.VecDense {
	out := mat.NewVecDense(z.Len(), nil)
	for i := 0; i < z.Len(); i++ {
		out.SetVec(i, f(z.AtVec(i)))
	}
	return out
}
