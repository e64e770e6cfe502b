// Package pkgmedia stores uploaded files and generated artifacts.
//
// Objects are addressed by slash-separated keys such as
// "uploads/42/data.csv". Two backends exist: a local directory served by the
// router's static route, and a MinIO/S3 bucket served from its own public URL.
package pkgmedia
