package pointcloud

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

const plyComment = "depthcloud generated"

// ToPLY writes points as an ascii PLY file. Normals are written only when there is exactly
// one per point.
func ToPLY(out io.Writer, points, normals []r3.Vector) error {
	withNormals := len(points) > 0 && len(normals) == len(points)

	header := "ply\n" +
		"format ascii 1.0\n" +
		"comment " + plyComment + "\n" +
		fmt.Sprintf("element vertex %d\n", len(points)) +
		"property float x\n" +
		"property float y\n" +
		"property float z\n"
	if withNormals {
		header += "property float nx\n" +
			"property float ny\n" +
			"property float nz\n"
	}
	header += "element face 0\n" +
		"property list uchar int vertex_indices\n" +
		"end_header\n"
	if _, err := io.WriteString(out, header); err != nil {
		return err
	}

	line := make([]byte, 0, 96)
	for i, p := range points {
		line = appendVector(line[:0], p)
		if withNormals {
			line = append(line, ' ')
			line = appendVector(line, normals[i])
		}
		line = append(line, '\n')
		if _, err := out.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func appendFloat32(dst []byte, f float64) []byte {
	return strconv.AppendFloat(dst, float64(float32(f)), 'g', -1, 32)
}

func appendVector(dst []byte, v r3.Vector) []byte {
	dst = appendFloat32(dst, v.X)
	dst = append(dst, ' ')
	dst = appendFloat32(dst, v.Y)
	dst = append(dst, ' ')
	return appendFloat32(dst, v.Z)
}

type plyHeader struct {
	vertices   int
	properties map[string]int
	numProps   int
}

func readPLYHeader(in *bufio.Reader) (plyHeader, error) {
	header := plyHeader{vertices: -1, properties: map[string]int{}}
	inVertex := false
	for lineNum := 0; ; lineNum++ {
		line, err := in.ReadString('\n')
		if err != nil {
			return header, errors.Wrapf(err, "error reading ply header line %d", lineNum)
		}
		line = strings.TrimSpace(line)
		tokens := strings.Fields(line)

		switch {
		case lineNum == 0:
			if line != "ply" {
				return header, errors.Errorf("not a ply file, first line is %q", line)
			}
		case len(tokens) == 0 || tokens[0] == "comment" || tokens[0] == "obj_info":
		case tokens[0] == "format":
			if len(tokens) != 3 || tokens[1] != "ascii" {
				return header, errors.Errorf("unsupported ply format %q", line)
			}
		case tokens[0] == "element":
			if len(tokens) != 3 {
				return header, errors.Errorf("bad ply element line %q", line)
			}
			count, err := strconv.Atoi(tokens[2])
			if err != nil {
				return header, errors.Wrapf(err, "bad ply element count %q", line)
			}
			inVertex = tokens[1] == "vertex"
			if inVertex {
				if header.vertices >= 0 {
					return header, errors.New("ply file has more than one vertex element")
				}
				header.vertices = count
			}
		case tokens[0] == "property":
			if !inVertex {
				continue
			}
			if len(tokens) != 3 {
				return header, errors.Errorf("unsupported ply vertex property %q", line)
			}
			header.properties[tokens[2]] = header.numProps
			header.numProps++
		case tokens[0] == "end_header":
			if header.vertices < 0 {
				return header, errors.New("ply file has no vertex element")
			}
			for _, name := range []string{"x", "y", "z"} {
				if _, ok := header.properties[name]; !ok {
					return header, errors.Errorf("ply vertex element is missing property %q", name)
				}
			}
			return header, nil
		default:
			return header, errors.Errorf("unexpected ply header line %q", line)
		}
	}
}

func (h plyHeader) hasNormals() bool {
	for _, name := range []string{"nx", "ny", "nz"} {
		if _, ok := h.properties[name]; !ok {
			return false
		}
	}
	return true
}

func (h plyHeader) vector(values []float64, x, y, z string) r3.Vector {
	return r3.Vector{X: values[h.properties[x]], Y: values[h.properties[y]], Z: values[h.properties[z]]}
}

// ReadPLY reads the vertices of an ascii PLY file. Elements after the vertex element
// are ignored.
func ReadPLY(inRaw io.Reader) (Records, error) {
	in := bufio.NewReader(inRaw)
	header, err := readPLYHeader(in)
	if err != nil {
		return Records{}, err
	}

	records := Records{Points: make([]r3.Vector, 0, header.vertices)}
	withNormals := header.hasNormals()
	if withNormals {
		records.Normals = make([]r3.Vector, 0, header.vertices)
	}

	values := make([]float64, header.numProps)
	for i := 0; i < header.vertices; i++ {
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return Records{}, errors.Wrapf(err, "error reading vertex %d of %d", i, header.vertices)
		}
		tokens := strings.Fields(line)
		if len(tokens) != header.numProps {
			return Records{}, errors.Errorf("vertex %d has %d values, expected %d", i, len(tokens), header.numProps)
		}
		for j, token := range tokens {
			values[j], err = strconv.ParseFloat(token, 64)
			if err != nil {
				return Records{}, errors.Wrapf(err, "invalid value %q for vertex %d", token, i)
			}
		}
		records.Points = append(records.Points, header.vector(values, "x", "y", "z"))
		if withNormals {
			records.Normals = append(records.Normals, header.vector(values, "nx", "ny", "nz"))
		}
	}
	return records, nil
}
