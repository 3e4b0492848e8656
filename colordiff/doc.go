// Package colordiff provides perceptual color-difference functions over CIE
// Lab coordinates, exposed both as named metrics and as a plain function
// type so the matching engine stays generic over the distance used.
package colordiff
