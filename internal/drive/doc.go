// Package drive holds the conversions at the edges of the control loop: the
// controller output mapped to a PWM duty cycle, and encoder edge counts
// turned into a signed speed.
package drive
