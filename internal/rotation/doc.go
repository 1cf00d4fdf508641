// Package rotation holds the orientation maths of the heading tool.
//
// Responsibilities: quaternion to rotation matrix conversion, roll/pitch/yaw
// decomposition in the extrinsic (fixed world axes) and intrinsic (moving
// body axes) conventions, the matching reconstructions, and mean rotation
// estimation over a batch of quaternion samples.
//
// Quaternions are gonum quat.Number values with Real=w, Imag=x, Jmag=y,
// Kmag=z. Matrices are 3×3 gonum *mat.Dense values. Nothing here touches
// files, plots or logging.
package rotation
