// Package sha2pc implements a two-party computation of
// SHA256(XOR(a,b)) with half-gates garbled circuits. Party 0 (the
// garbler) and party 1 (the evaluator) each hold one XOR share of the
// message; the evaluator learns the SHA-256 digest of the recombined
// message and neither party learns the other's share.
//
// The protocol iterates a single-block compression-function circuit
// over the padded message, threading the 256-bit chaining state
// between blocks inside the garbled domain. The hand-off from garbler
// to evaluator is a single GarbleResult value; the evaluator's input
// labels can be selected from the cleartext label pairs or transferred
// obliviously:
//
//	circ, err := circuit.Parse("data/sha256-bristol-basic.txt")
//	if err != nil {
//		log.Fatal(err)
//	}
//	p0, err := sha2pc.NewParty(sha2pc.RoleGarbler, share0, circ)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := p0.StartGarbling(crand.Reader)
//	if err != nil {
//		log.Fatal(err)
//	}
//	p1, err := sha2pc.NewParty(sha2pc.RoleEvaluator, share1, circ)
//	if err != nil {
//		log.Fatal(err)
//	}
//	digest, err := p1.StartEvaluating(result)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Variable digest is the SHA-256 hash of XOR(share0, share1).
package sha2pc
