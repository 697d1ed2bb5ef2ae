// Package yaml_adapter loads the address-space schema and server settings
// from YAML files. It produces the same config.Model as the HCL loader, so
// both formats can be mixed in one deployment.
//
// A file looks like:
//
//	server:
//	  listen: ":4840"
//	vertex_types:
//	  - name: Pump
//	    fields:
//	      - name: rpm
//	        type: number
//	        unit: 1/min
//	        default: 1000
//	edge_types:
//	  - name: feeds
//	    inverse_name: fed by
//
// Field types use the same type expressions as HCL ("string",
// "list(number)", ...).
package yaml_adapter
