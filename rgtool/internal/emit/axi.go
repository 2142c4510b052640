// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/embeddedgo/regtools/regmap"
)

type param struct {
	Name    string
	Default string
}

type arm struct {
	Addr  string
	Stmts []string
}

type memWindow struct {
	Name      string
	Base      string
	High      string
	AddrRange string
	DataRange string
}

type axiSlave struct {
	Name       string
	Params     []param
	Ports      []string
	Decls      []string
	Resets     []string
	Commands   []string
	Memories   []string
	Writes     []arm
	MemWrites  []memWindow
	ClearLines []string
	Reads      []arm
}

const axiText = `
module {{.Name}}_axi_slave
  import {{.Name}}_address_pkg::*;
  #(
{{- range $i, $p := .Params}}{{if $i}},{{end}}
    parameter int {{$p.Name}} = {{$p.Default}}
{{- end}}
  )(
    axi4_reg_if.slave cif
{{- range .Ports}},
    {{.}}
{{- end}}
  );

  localparam int AXI_DATA_BYTES_C = AXI_DATA_WIDTH_P / 8;
{{range .Decls}}
  {{.}}
{{- end}}

  typedef enum {
    WRITE_IDLE_E,
    WRITE_DATA_E,
    WRITE_RESPONSE_E
  } write_state_t;

  typedef enum {
    READ_IDLE_E,
    READ_DATA_E
  } read_state_t;

  write_state_t write_state;
  read_state_t  read_state;

  logic [AXI_ADDR_WIDTH_P-1 : 0] awaddr_r0;
  logic [AXI_ID_P-1 : 0]         awid_r0;
  logic [AXI_ADDR_WIDTH_P-1 : 0] araddr_r0;
  logic [7 : 0]                  arlen_r0;

  // Write channel
  always_ff @(posedge cif.clk or negedge cif.rst_n) begin
    if (!cif.rst_n) begin
      write_state <= WRITE_IDLE_E;
      awaddr_r0   <= '0;
      awid_r0     <= '0;
      cif.awready <= '0;
      cif.wready  <= '0;
      cif.bvalid  <= '0;
      cif.bid     <= '0;
      cif.bresp   <= '0;
{{- range .Resets}}
      {{.}}
{{- end}}
    end
    else begin
{{- range .Commands}}
      {{.}}
{{- end}}
{{- range .Memories}}
      {{.}}
{{- end}}

      case (write_state)

        WRITE_IDLE_E: begin
          cif.awready <= '1;
          if (cif.awvalid && cif.awready) begin
            cif.awready <= '0;
            cif.wready  <= '1;
            awaddr_r0   <= cif.awaddr;
            awid_r0     <= cif.awid;
            write_state <= WRITE_DATA_E;
          end
        end

        WRITE_DATA_E: begin
          if (cif.wvalid && cif.wready) begin

            case (awaddr_r0)
{{range .Writes}}
              {{.Addr}}: begin
{{- range .Stmts}}
                {{.}}
{{- end}}
              end
{{end}}
              default: begin
              end

            endcase
{{range .MemWrites}}
            if (awaddr_r0 >= {{.Base}} && awaddr_r0 < {{.High}}) begin
              {{.Name}}_we    <= '1;
              {{.Name}}_addr  <= awaddr_r0{{.AddrRange}};
              {{.Name}}_wdata <= cif.wdata{{.DataRange}};
            end
{{end}}
            awaddr_r0 <= awaddr_r0 + AXI_DATA_BYTES_C;

            if (cif.wlast) begin
              cif.wready  <= '0;
              cif.bvalid  <= '1;
              cif.bid     <= awid_r0;
              cif.bresp   <= '0;
              write_state <= WRITE_RESPONSE_E;
            end
          end
        end

        WRITE_RESPONSE_E: begin
          if (cif.bvalid && cif.bready) begin
            cif.bvalid  <= '0;
            write_state <= WRITE_IDLE_E;
          end
        end

      endcase
    end
  end

  // Read channel
  always_ff @(posedge cif.clk or negedge cif.rst_n) begin
    if (!cif.rst_n) begin
      read_state  <= READ_IDLE_E;
      araddr_r0   <= '0;
      arlen_r0    <= '0;
      cif.arready <= '0;
      cif.rvalid  <= '0;
      cif.rlast   <= '0;
      cif.rid     <= '0;
    end
    else begin

      case (read_state)

        READ_IDLE_E: begin
          cif.arready <= '1;
          if (cif.arvalid && cif.arready) begin
            cif.arready <= '0;
            cif.rvalid  <= '1;
            cif.rlast   <= (cif.arlen == '0);
            cif.rid     <= cif.arid;
            araddr_r0   <= cif.araddr;
            arlen_r0    <= cif.arlen;
            read_state  <= READ_DATA_E;
          end
        end

        READ_DATA_E: begin
          if (cif.rvalid && cif.rready) begin
            araddr_r0 <= araddr_r0 + AXI_DATA_BYTES_C;
            arlen_r0  <= arlen_r0 - 1;
            cif.rlast <= (arlen_r0 == 1);
            if (cif.rlast) begin
              cif.rvalid <= '0;
              cif.rlast  <= '0;
              read_state <= READ_IDLE_E;
            end
          end
        end

      endcase
    end
  end

  always_comb begin
    cif.rdata = '0;
    cif.rresp = '0;
{{- range .ClearLines}}
    {{.}}
{{- end}}

    case (araddr_r0)
{{range .Reads}}
      {{.Addr}}: begin
{{- range .Stmts}}
        {{.}}
{{- end}}
      end
{{end}}
      default: begin
        cif.rdata = '0;
      end

    endcase
  end

endmodule
`

var axiTmpl = template.Must(template.New("axi").Parse(axiText))

// AXISlave writes the AXI4 register slave module of the block.
func AXISlave(w io.Writer, m *regmap.Model) error {
	ew := &errWriter{w: w}
	donotedit(ew, m)
	if ew.err != nil {
		return ew.err
	}
	return axiTmpl.Execute(ew, newAXISlave(m))
}

func newAXISlave(m *regmap.Model) *axiSlave {
	b := m.Block
	as := &axiSlave{Name: b.Name, Params: params(b)}
	var ports, decls, resets [][]string
	for _, l := range m.Layouts {
		r := l.Reg
		for _, f := range r.Fields {
			width := portWidth(f, r)
			switch {
			case f.Kind.Output():
				ports = append(ports, []string{"output logic", width, f.Name})
			case f.Kind.Input():
				ports = append(ports, []string{"input  wire ", width, f.Name})
			case f.Kind == regmap.Constant:
				value := *f.Reset
				if r.Repeated() {
					value = "{" + strconv.Itoa(r.Repeat) + "{" + value + "}}"
				}
				decls = append(decls, []string{
					"localparam logic unsigned", width, f.Name + " = " + value + ";",
				})
			default:
				decls = append(decls, []string{"logic", width, f.Name + ";"})
			}
		}
		for _, rs := range l.Resets {
			if rs.Field.Kind.Input() {
				continue
			}
			resets = append(resets, []string{rs.Signal(), "<= " + rs.Value + ";"})
		}
		for _, s := range l.Slots {
			if s.Write != nil {
				as.Writes = append(as.Writes, arm{s.Name, []string{writeStmt(s.Write)}})
			}
			if s.Read != nil {
				stmts := []string{readStmt(s.Read)}
				if s.Clear != "" {
					stmts = append(stmts, s.Clear+" = cif.rvalid && cif.rready;")
				}
				as.Reads = append(as.Reads, arm{s.Name, stmts})
			}
		}
	}
	for _, c := range m.ClearSignals() {
		ports = append(ports, []string{"output logic", "", c})
		as.ClearLines = append(as.ClearLines, c+" = '0;")
	}
	var cmds [][]string
	for _, f := range m.SelfClearing() {
		cmds = append(cmds, []string{f.Name, "<= '0;"})
	}
	var mems [][]string
	for _, mr := range m.Map.Mems {
		name := mr.Mem.Name
		addr := "[" + strconv.Itoa(int(mr.AddrBits())-1) + " : 0]"
		if mr.AddrBits() == 0 {
			addr = "[0 : 0]"
		}
		data := "[" + strconv.Itoa(mr.Mem.Width-1) + " : 0]"
		ports = append(ports,
			[]string{"output logic", "", name + "_we"},
			[]string{"output logic", addr, name + "_addr"},
			[]string{"output logic", data, name + "_wdata"},
		)
		for _, sig := range []string{"_we", "_addr", "_wdata"} {
			resets = append(resets, []string{name + sig, "<= '0;"})
		}
		mems = append(mems, []string{name + "_we", "<= '0;"})
		as.MemWrites = append(as.MemWrites, memWindow{
			Name:      name,
			Base:      mr.BaseName,
			High:      mr.HighName,
			AddrRange: addr,
			DataRange: data,
		})
	}
	as.Ports = align(ports)
	as.Decls = align(decls)
	as.Resets = align(resets)
	as.Commands = align(cmds)
	as.Memories = align(mems)
	return as
}

// params returns the module parameters sorted by name. The bus parameters
// default to the block geometry, the user parameters to -1.
func params(b *regmap.RegisterBlock) []param {
	defaults := map[string]string{
		"AXI_DATA_WIDTH_P": strconv.Itoa(b.BusWidth),
		"AXI_ADDR_WIDTH_P": strconv.Itoa(b.AddrWidth),
		"AXI_ID_P":         "1",
	}
	for _, p := range b.Params {
		name := regmap.ParamName(p)
		if _, ok := defaults[name]; !ok {
			defaults[name] = "-1"
		}
	}
	ps := make([]param, 0, len(defaults))
	for name, def := range defaults {
		ps = append(ps, param{name, def})
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	return ps
}

// portWidth returns the packed dimensions of the signal of field f:
// [repeat-1 : 0] for repeated registers followed by the field range.
func portWidth(f *regmap.BitField, r *regmap.Register) string {
	var dims []string
	if r.Repeated() {
		dims = append(dims, "["+strconv.Itoa(r.Repeat-1)+" : 0]")
	}
	switch {
	case f.Size.Symbolic():
		dims = append(dims, "["+f.Size.Param+"-1 : 0]")
	case f.Size.Bits > 1:
		dims = append(dims, "["+strconv.Itoa(f.Size.Bits-1)+" : 0]")
	}
	return strings.Join(dims, "")
}

func fieldList(e *regmap.Expr) string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = regmap.ArrayElem(f.Name, e.Index)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func writeStmt(e *regmap.Expr) string {
	if e.Concat() {
		return fieldList(e) + " <= cif.wdata;"
	}
	return regmap.ArrayElem(e.Fields[0].Name, e.Index) + " <= cif.wdata[" + e.Range.String() + "];"
}

func readStmt(e *regmap.Expr) string {
	if e.Concat() {
		return "cif.rdata = " + fieldList(e) + ";"
	}
	return "cif.rdata[" + e.Range.String() + "] = " + regmap.ArrayElem(e.Fields[0].Name, e.Index) + ";"
}

// align aligns the columns of rows and returns them as lines.
func align(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
	for _, row := range rows {
		tw.Write([]byte(strings.Join(row, "\t") + "\n"))
	}
	tw.Flush()
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}
